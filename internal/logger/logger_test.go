package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/ostafen/partview/internal/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("INFO"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel("warn"))
	require.Equal(t, slog.LevelError, logger.ParseLevel("ERROR"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Info("partition table decoded", "scheme", "GPT", "partitions", 3)
	log.With("image", "disk 1.img").Warn("checksum mismatch")
	log.WithGroup("entry").Error("malformed", "num", 2)

	require.Equal(t,
		"[INFO] partition table decoded scheme=GPT partitions=3\n"+
			"[WARN] checksum mismatch image=\"disk 1.img\"\n"+
			"[ERROR] malformed entry.num=2\n",
		buf.String())
}

func TestSetup(t *testing.T) {
	afs := afero.NewMemMapFs()

	log, closer, err := logger.Setup(afs, "/logs/partview.log", slog.LevelDebug)
	require.NoError(t, err)
	require.NotNil(t, closer)

	log.Debug("reading header", "lba", 1)
	require.NoError(t, closer.Close())

	data, err := afero.ReadFile(afs, "/logs/partview.log")
	require.NoError(t, err)
	require.Contains(t, string(data), "msg=\"reading header\"")
	require.Contains(t, string(data), "lba=1")

	log, closer, err = logger.Setup(afs, "", slog.LevelDebug)
	require.NoError(t, err)
	require.Nil(t, closer)
	log.Info("discarded")
}
