package controller

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ExpositionServiceName = "promtext.v1.ExpositionService"
	RenderMethod          = "/" + ExpositionServiceName + "/Render"
)

// ExpositionServiceServer renders a named metric set. The request carries the
// set name, the response the text exposition.
type ExpositionServiceServer interface {
	Render(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

var ExpositionServiceDesc = grpc.ServiceDesc{
	ServiceName: ExpositionServiceName,
	HandlerType: (*ExpositionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Render",
			Handler:    renderHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterExpositionServiceServer(s grpc.ServiceRegistrar, srv ExpositionServiceServer) {
	s.RegisterService(&ExpositionServiceDesc, srv)
}

func renderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExpositionServiceServer).Render(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RenderMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExpositionServiceServer).Render(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// RenderClient calls Render on conn.
func RenderClient(ctx context.Context, conn grpc.ClientConnInterface, set string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := conn.Invoke(ctx, RenderMethod, wrapperspb.String(set), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
