package services

import (
	"io"
	"os"
	"testing"

	"github.com/givehopebz/givehope-api/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}
