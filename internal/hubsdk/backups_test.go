package hubsdk

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionCookie = "HUBSESSION"

// hubFixture fakes the diagnostic service: cookie-gated listing and
// download endpoints behind a MAC-credential login.
type hubFixture struct {
	srv         *httptest.Server
	loginBody   string
	loginStatus int
	rejectLogin bool
	listBody    string
	files       map[string][]byte
	served      []string
}

func (f *hubFixture) requireSession(w http.ResponseWriter, r *http.Request) bool {
	if _, err := r.Cookie(testSessionCookie); err != nil {
		http.Error(w, "<html><body>Please login</body></html>", http.StatusUnauthorized)
		return false
	}
	return true
}

func newTestHub(t *testing.T) (*HubSDK, *hubFixture) {
	t.Helper()

	fix := &hubFixture{files: map[string][]byte{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/newLogin", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		fix.loginBody = string(body)

		if fix.loginStatus != 0 {
			http.Error(w, "<html><body>Hub maintenance</body></html>", fix.loginStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if fix.rejectLogin {
			w.Write([]byte(`{"success":false,"message":"Hub not found"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: testSessionCookie, Value: "test-session"})
		w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("/api/backups", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if !fix.requireSession(w, r) {
			return
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, fix.listBody)
	})
	mux.HandleFunc("/api/downloadBackup/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if !fix.requireSession(w, r) {
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/api/downloadBackup/")
		content, ok := fix.files[name]
		if !ok {
			http.Error(w, "<html><body>No such backup</body></html>", http.StatusNotFound)
			return
		}
		fix.served = append(fix.served, name)
		w.Write(content)
	})

	fix.srv = httptest.NewServer(mux)
	t.Cleanup(fix.srv.Close)

	sdk, err := New(&Config{
		Host: strings.TrimPrefix(fix.srv.URL, "http://"),
		MAC:  "34:e1:d1:00:11:22",
	})
	require.NoError(t, err)
	return sdk, fix
}

func TestLoginSendsNormalizedMAC(t *testing.T) {
	sdk, fix := newTestHub(t)

	require.NoError(t, sdk.Login(context.Background()))
	assert.Equal(t, "34E1D1001122", fix.loginBody)
}

func TestLoginRejected(t *testing.T) {
	t.Run("success false", func(t *testing.T) {
		sdk, fix := newTestHub(t)
		fix.rejectLogin = true

		err := sdk.Login(context.Background())
		require.ErrorIs(t, err, ErrLoginFailed)
		assert.Contains(t, err.Error(), "Hub not found")
	})

	t.Run("http error", func(t *testing.T) {
		sdk, fix := newTestHub(t)
		fix.loginStatus = http.StatusInternalServerError

		err := sdk.Login(context.Background())
		var hubErr *HubError
		require.ErrorAs(t, err, &hubErr)
		assert.Equal(t, "login", hubErr.Op)
		assert.Equal(t, http.StatusInternalServerError, hubErr.Status)
		assert.Contains(t, hubErr.Detail, "Hub maintenance")
	})
}

func TestListBackupsRequiresSession(t *testing.T) {
	sdk, fix := newTestHub(t)
	fix.listBody = "<html><a href=\"2024-03-01~1.lzf\">2024-03-01~1.lzf</a></html>"

	_, err := sdk.ListBackups(context.Background())
	var hubErr *HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, http.StatusUnauthorized, hubErr.Status)
	assert.Equal(t, "listing", hubErr.Op)

	require.NoError(t, sdk.Login(context.Background()))
	body, err := sdk.ListBackups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fix.listBody, string(body))
}

func TestDownloadBackup(t *testing.T) {
	sdk, fix := newTestHub(t)
	content := []byte("lzf compressed database bytes")
	fix.files["2024-03-01~2.3.9.159.lzf"] = content
	require.NoError(t, sdk.Login(context.Background()))

	dest := filepath.Join(t.TempDir(), "2024-03-01~2.3.9.159.lzf")
	size, err := sdk.DownloadBackup(context.Background(), "2024-03-01~2.3.9.159.lzf", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, []string{"2024-03-01~2.3.9.159.lzf"}, fix.served)
}

func TestDownloadBackupErrorLeavesNoFile(t *testing.T) {
	sdk, _ := newTestHub(t)
	require.NoError(t, sdk.Login(context.Background()))

	dest := filepath.Join(t.TempDir(), "2024-03-01~1.lzf")
	_, err := sdk.DownloadBackup(context.Background(), "2024-03-01~1.lzf", dest)

	var hubErr *HubError
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, http.StatusNotFound, hubErr.Status)
	assert.NoFileExists(t, dest)
}
