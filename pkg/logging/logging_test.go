package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugw("bucket done", "index", 3)
	logger.Infof("rendered %d buckets", 9)

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	entries := logs.All()
	test.That(t, entries[0].Level, test.ShouldEqual, zapcore.DebugLevel)
	test.That(t, entries[0].ContextMap()["index"], test.ShouldEqual, int64(3))
	test.That(t, entries[1].Message, test.ShouldEqual, "rendered 9 buckets")
}

func TestOrNop(t *testing.T) {
	test.That(t, OrNop(nil), test.ShouldNotBeNil)
	logger := NewTestLogger(t)
	test.That(t, OrNop(logger), test.ShouldEqual, logger)
}

func TestLoggerLevels(t *testing.T) {
	test.That(t, NewLogger("info").Desugar().Core().Enabled(zapcore.DebugLevel), test.ShouldBeFalse)
	test.That(t, NewDebugLogger("debug").Desugar().Core().Enabled(zapcore.DebugLevel), test.ShouldBeTrue)
}
