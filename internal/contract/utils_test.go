package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.txt")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.FileExists(t, path)
}

func TestGetDBFilePaths(t *testing.T) {
	assert.Contains(t, GetCacheDBFilePath(), ".githours_cache.db")
	assert.Contains(t, GetAnalysisDBFilePath(), ".githours_analysis.db")
	assert.NotEqual(t, GetCacheDBFilePath(), GetAnalysisDBFilePath())
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "fix bug", 20, "fix bug"},
		{"truncated", "implement the whole feature", 10, "impleme..."},
		{"first line only", "subject\n\nbody", 20, "subject"},
		{"tiny width untouched", "abcdef", 3, "abcdef"},
		{"multibyte", "日本語のコミット", 5, "日本..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateText(tt.text, tt.width))
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abcdef12", ShortID("abcdef1234567890"))
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"main", "dev"}, SplitList(" main , dev ,"))
	assert.Nil(t, SplitList(""))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	require.NoError(t, InitLogger(""))
	require.NoError(t, InitLogger("debug"))
	assert.True(t, Logger().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger("warn"))
	assert.False(t, Logger().Core().Enabled(zap.InfoLevel))

	assert.Error(t, InitLogger("chatty"))
}
