package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	gorilla "github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/sakif/urban-reports/internal/auth"
	"github.com/sakif/urban-reports/internal/repository/sqlite"
	"github.com/sakif/urban-reports/internal/service"
	"github.com/sakif/urban-reports/internal/storage"
)

// testEnv wires the handlers against a real in-memory database and a local
// blob store, with the same route table the server uses.
type testEnv struct {
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err, "creating test database")
	t.Cleanup(func() { db.Close() })

	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err, "creating local blob store")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewSessionManager(
		gorilla.NewCookieStore([]byte("test-secret-at-least-16-chars!!")),
		time.Hour,
	)

	authSvc := service.NewAuthService(sqlite.NewUserRepo(db), auth.NewPasswordServiceWithCost(4), blobs, logger)
	reportSvc := service.NewReportService(sqlite.NewReportRepo(db), blobs, logger)

	authHandler := NewAuthHandler(authSvc, sessions, logger)
	reportHandler := NewReportHandler(reportSvc, logger)

	r := chi.NewRouter()
	r.Post("/cadastro", authHandler.HandleRegister)
	r.Post("/login", authHandler.HandleLogin)
	r.Post("/logout", authHandler.HandleLogout)
	r.Get("/problemas", reportHandler.HandleList)
	r.Get("/usuario/{id}", authHandler.HandleGetUser)
	r.With(auth.OptionalAuth(sessions)).Get("/auth/check", authHandler.HandleAuthCheck)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAuth(sessions))
		pr.Post("/problemas", reportHandler.HandleCreate)
		pr.Delete("/problemas/{id}/foto", reportHandler.HandleRemovePhoto)
		pr.Put("/perfil", authHandler.HandleUpdateProfile)
	})
	r.NotFound(NotFoundHandler)

	return &testEnv{router: r}
}

// do runs a request through the router and returns the recorder.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// postJSON builds a JSON POST request.
func postJSON(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// register creates an account through the API and fails the test on error.
func (e *testEnv) register(t *testing.T, name, email, password string) {
	t.Helper()
	w := e.do(postJSON(t, "/cadastro", map[string]string{
		"name": name, "email": email, "password": password,
	}))
	require.Equal(t, http.StatusCreated, w.Code, "register: %s", w.Body.String())
}

// login authenticates and returns the session cookies.
func (e *testEnv) login(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	w := e.do(postJSON(t, "/login", map[string]string{
		"email": email, "password": password,
	}))
	require.Equal(t, http.StatusOK, w.Code, "login: %s", w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "login set no session cookie")
	return cookies
}

// multipartBody builds a multipart/form-data body from text fields plus an
// optional photo part and returns the body and its content type.
func multipartBody(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		part, err := mw.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// pngBytes is a valid PNG signature; http.DetectContentType needs only the
// leading bytes to classify it as image/png.
func pngBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
}

// decodeBody unmarshals the recorded JSON body into a generic map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func addCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}
