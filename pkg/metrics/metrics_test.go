package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(CodeRequestsTotal.WithLabelValues("delivery_failed"))
	var rec AuthRecorder
	rec.CodeRequest("delivery_failed")
	assert.Equal(t, before+1, testutil.ToFloat64(CodeRequestsTotal.WithLabelValues("delivery_failed")))

	before = testutil.ToFloat64(LoginsTotal.WithLabelValues("ok"))
	rec.Login("ok")
	rec.Login("ok")
	assert.Equal(t, before+2, testutil.ToFloat64(LoginsTotal.WithLabelValues("ok")))

	before = testutil.ToFloat64(PendingSweptTotal)
	RecordSwept(3)
	assert.Equal(t, before+3, testutil.ToFloat64(PendingSweptTotal))
}
