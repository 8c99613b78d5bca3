package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelkhrustalyov/energy-app-local/config"
	"github.com/pavelkhrustalyov/energy-app-local/internal/container"
	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/filestore"
	"github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/memory"
	"github.com/pavelkhrustalyov/energy-app-local/internal/interface/middleware"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/validation"
)

type envelope struct {
	Status  int                    `json:"status"`
	Success bool                   `json:"success"`
	Msg     string                 `json:"msg"`
	Data    json.RawMessage        `json:"data"`
	Errors  []validation.Violation `json:"errors"`
}

type testApp struct {
	engine    *gin.Engine
	store     *memory.Store
	jwt       *helpers.JWTManager
	avatarDir string
	admin     *entity.User
	user      *entity.User
	other     *entity.User
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := &testApp{
		store:     memory.NewStore(),
		jwt:       helpers.NewJWTManager("test-secret", time.Hour),
		avatarDir: t.TempDir(),
	}
	fs, err := filestore.NewLocal(app.avatarDir)
	require.NoError(t, err)

	container.SetConfig(&config.Config{
		AppName:                "energy-test",
		AvatarMaxBytes:         1 << 20,
		AvatarRemoveSuperseded: true,
		ProfileCacheTTL:        time.Minute,
		ESUsersIndex:           "users",
		DebugMetricsEnabled:    true,
	})
	container.SetLogger(logger)
	container.SetPGPool(nil)
	container.SetRedis(nil)
	container.SetES(nil)
	container.SetRabbitPub(nil)
	container.SetMemStore(app.store)
	container.SetFileStore(fs)
	container.SetJWT(app.jwt)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	reg := NewRegistry(r)
	InitModules(reg, BuildServices())
	reg.RegisterAll()
	app.engine = r

	users := app.store.Users()
	ctx := context.Background()
	app.admin = &entity.User{Role: entity.RoleAdmin, Login: "admin", Name: "Anna"}
	app.user = &entity.User{Role: entity.RoleUser, Login: "ivan", Password: "$2a$10$hash", Name: "Ivan"}
	app.other = &entity.User{Role: entity.RoleUser, Login: "petr", Name: "Petr"}
	for _, u := range []*entity.User{app.admin, app.user, app.other} {
		require.NoError(t, users.Create(ctx, u))
	}
	return app
}

func (a *testApp) token(t *testing.T, u *entity.User) string {
	t.Helper()
	tok, _, err := a.jwt.GenerateAccessToken(u.ID, string(u.Role), "")
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, as *entity.User, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(t, as))
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testApp) doJSON(t *testing.T, as *entity.User, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return a.do(t, as, method, path, strings.NewReader(body), "application/json")
}

func TestMe(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, nil, http.MethodGet, "/api/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := app.do(t, app.user, http.MethodGet, "/api/me", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"login":"ivan"`)
	assert.NotContains(t, w.Body.String(), "$2a$10$hash")

	require.NoError(t, app.store.Users().Delete(context.Background(), app.user.ID))
	w, _ = app.do(t, app.user, http.MethodGet, "/api/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProfile_IsRedacted(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, app.other, http.MethodGet, "/api/users/"+app.user.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"name":"Ivan"`)
	assert.NotContains(t, string(env.Data), "login")

	w, env = app.do(t, app.other, http.MethodGet, "/api/users/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", env.Msg)
}

func TestUpdateProfile(t *testing.T) {
	app := newTestApp(t)
	path := "/api/users/" + app.user.ID

	w, env := app.doJSON(t, app.other, http.MethodPatch, path, `{"name":"Hacked"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not allowed to edit this profile", env.Msg)

	w, env = app.doJSON(t, app.user, http.MethodPatch, path, `{"phone":"call me"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "phone", env.Errors[0].Field)

	w, _ = app.doJSON(t, app.user, http.MethodPatch, path, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.doJSON(t, app.user, http.MethodPatch, path, `{"lastname":"Petrov","birthday":"1990-05-17","role":"admin","login":"root","avatar":"x.jpeg"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		User entity.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Petrov", data.User.Lastname)
	assert.Equal(t, "Ivan", data.User.Name)
	assert.Equal(t, entity.RoleUser, data.User.Role)
	assert.Equal(t, "ivan", data.User.Login)
	assert.Nil(t, data.User.Avatar)

	w, env = app.doJSON(t, app.admin, http.MethodPatch, "/api/users/missing", `{"name":"X"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, string(env.Data))
}

func TestUpdateProfile_AdminGetsRedactedView(t *testing.T) {
	app := newTestApp(t)

	w, env := app.doJSON(t, app.admin, http.MethodPatch, "/api/users/"+app.other.ID, `{"name":"P"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, string(env.Data), `"login"`)
	assert.NotContains(t, string(env.Data), "petr")

	var data struct {
		User entity.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, app.other.ID, data.User.ID)
	assert.Equal(t, "P", data.User.Name)

	// admin editing their own record keeps the owner view
	w, env = app.doJSON(t, app.admin, http.MethodPatch, "/api/users/"+app.admin.ID, `{"lastname":"Admin"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"login":"admin"`)
}

func TestDeleteUser(t *testing.T) {
	app := newTestApp(t)
	app.store.AddPost(entity.Post{UserID: app.user.ID})
	app.store.AddComment(entity.Comment{UserID: app.user.ID})

	w, env := app.do(t, app.other, http.MethodDelete, "/api/users/"+app.user.ID, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "admin rights required", env.Msg)

	w, env = app.do(t, app.admin, http.MethodDelete, "/api/users/"+app.admin.ID, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "cannot delete own account", env.Msg)

	w, _ = app.do(t, app.admin, http.MethodDelete, "/api/users/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = app.do(t, app.admin, http.MethodDelete, "/api/users/"+app.user.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"`+app.user.ID+`","posts_deleted":1,"comments_deleted":1}`, string(env.Data))
	assert.Empty(t, app.store.PostsByUser(app.user.ID))
	assert.Empty(t, app.store.CommentsByUser(app.user.ID))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for x := 0; x < 64; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(y * 4), B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="upload.bin"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadAvatar(t *testing.T) {
	app := newTestApp(t)
	path := "/api/users/" + app.user.ID + "/avatar"

	body, ct := multipartBody(t, "avatar", "image/png", pngBytes(t))
	w, env := app.do(t, app.user, http.MethodPost, path, body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Avatar string `json:"avatar"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Regexp(t, regexp.MustCompile("^"+app.user.ID+`-\d+\.jpeg$`), data.Avatar)

	stored, err := os.ReadFile(filepath.Join(app.avatarDir, data.Avatar))
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 400, cfg.Width)

	u, err := app.store.Users().GetByID(context.Background(), app.user.ID)
	require.NoError(t, err)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, data.Avatar, *u.Avatar)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	app := newTestApp(t)
	path := "/api/users/me/avatar"

	body, ct := multipartBody(t, "avatar", "text/plain", []byte("hello"))
	w, env := app.do(t, app.user, http.MethodPost, path, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "only image uploads are allowed", env.Msg)

	body, ct = multipartBody(t, "other", "image/png", pngBytes(t))
	w, env = app.do(t, app.user, http.MethodPost, path, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no file to upload", env.Msg)

	body, ct = multipartBody(t, "avatar", "image/png", []byte("not really a png"))
	w, _ = app.do(t, app.user, http.MethodPost, path, body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body, ct = multipartBody(t, "avatar", "image/png", pngBytes(t))
	w, _ = app.do(t, app.user, http.MethodPost, "/api/users/"+app.other.ID+"/avatar", body, ct)
	assert.Equal(t, http.StatusForbidden, w.Code)

	entries, err := os.ReadDir(app.avatarDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	u, _ := app.store.Users().GetByID(context.Background(), app.user.ID)
	assert.Nil(t, u.Avatar)
}

func TestWall(t *testing.T) {
	app := newTestApp(t)
	post := func(text, date string) (*httptest.ResponseRecorder, envelope) {
		return app.doJSON(t, app.user, http.MethodPost, "/api/wall/"+app.user.ID+"/"+app.other.ID,
			`{"text":"`+text+`","date":"`+date+`"}`)
	}

	w, env := post("first", "2024-03-01T10:00:00Z")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"name":"Ivan"`)
	assert.NotContains(t, string(env.Data), "login")

	w, _ = post("second", "2024-03-02T10:00:00Z")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = post("   ", "2024-03-02T10:00:00Z")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "text", env.Errors[0].Field)

	w, _ = app.doJSON(t, app.user, http.MethodPost, "/api/wall/a/b", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.do(t, app.admin, http.MethodGet, "/api/wall/"+app.other.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []entity.WallPostView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Text)
	assert.Equal(t, "first", list[1].Text)
	require.NotNil(t, list[0].Author)
	assert.Equal(t, app.user.ID, list[0].Author.ID)

	w, env = app.do(t, app.admin, http.MethodGet, "/api/wall/nobody", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = app.do(t, app.admin, http.MethodGet, "/api/wall/%20", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchAndDebugVars(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, app.user, http.MethodGet, "/api/users/search?q=", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := app.do(t, app.user, http.MethodGet, "/api/users/search?q=ivan", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = app.do(t, nil, http.MethodGet, "/api/debug/vars", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = app.do(t, app.user, http.MethodGet, "/api/debug/vars", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "admin rights required", env.Msg)

	w, _ = app.do(t, app.admin, http.MethodGet, "/api/debug/vars", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wall_posts_created")
}
