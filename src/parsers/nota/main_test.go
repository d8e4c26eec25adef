package nota

import (
	"os"
	"testing"

	"github.com/username/notafolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}
