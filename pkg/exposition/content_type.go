package exposition

import "github.com/prometheus/common/expfmt"

// ContentType is the Content-Type header value for rendered output.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))
