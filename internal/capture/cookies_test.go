package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCookiesTxt = `# Netscape HTTP Cookie File
# This file is generated by a browser export.

.x.com	TRUE	/	TRUE	1999999999	auth_token	abc123def
.x.com	TRUE	/	TRUE	1999999999	ct0	deadbeef
malformed line without tabs
.twitter.com	TRUE	/	FALSE	1999999999	guest_id	v1:42
`

func writeCookiesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseCookiesFile(t *testing.T) {
	path := writeCookiesFile(t, sampleCookiesTxt)

	cookies, err := ParseCookiesFile(path)
	require.NoError(t, err)
	require.Len(t, cookies, 3, "comments and malformed lines are skipped")

	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Equal(t, "abc123def", cookies[0].Value)
	assert.Equal(t, ".x.com", cookies[0].Domain)
	assert.Equal(t, "/", cookies[0].Path)
	assert.True(t, cookies[0].Secure)

	assert.Equal(t, "guest_id", cookies[2].Name)
	assert.Equal(t, "v1:42", cookies[2].Value)
	assert.False(t, cookies[2].Secure)
}

func TestParseCookiesFileEmpty(t *testing.T) {
	path := writeCookiesFile(t, "# just a comment\n")

	cookies, err := ParseCookiesFile(path)
	require.NoError(t, err)
	assert.Empty(t, cookies)
}

func TestParseCookiesFileMissing(t *testing.T) {
	_, err := ParseCookiesFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
