package exposition_test

import (
	"errors"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/require"
)

var errSinkClosed = errors.New("sink closed")

// failingWriter accepts limit writes and fails every write after that.
type failingWriter struct {
	limit  int
	writes int
	buf    strings.Builder
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes >= w.limit {
		return 0, errSinkClosed
	}
	w.writes++
	return w.buf.Write(p)
}

func parseExposition(t *testing.T, text string) map[string]*dto.MetricFamily {
	t.Helper()
	parser := expfmt.NewTextParser(model.LegacyValidation)
	families, err := parser.TextToMetricFamilies(strings.NewReader(text))
	require.NoError(t, err)
	return families
}
