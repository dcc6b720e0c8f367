package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "masterdesk_session", "secret", time.Hour, false), mr
}

func commitAndCookie(t *testing.T, sm *SessionManager, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func reload(t *testing.T, sm *SessionManager, cookie *http.Cookie) *Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return sess
}

func TestFlashSurvivesRedirect(t *testing.T) {
	sm, _ := newSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)

	sess.AddFlash(FlashMessage{Kind: FlashSuccess, Title: "Thành công!", Message: "Đã xóa đơn vị tính thành công!"})
	cookie := commitAndCookie(t, sm, sess)

	next := reload(t, sm, cookie)
	flashes := next.PopFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, FlashSuccess, flashes[0].Kind)
	commitAndCookie(t, sm, next)

	assert.Empty(t, reload(t, sm, cookie).PopFlashes(), "a consumed flash is gone")
}

func TestSessionCredentialsAndLanguage(t *testing.T) {
	sm, _ := newSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())

	sess.SetAccessToken("tok")
	sess.SetUser("admin")
	sess.SetLanguage("ko")
	require.NoError(t, sess.SetJSON("nav", map[string]string{"selected": "unit"}))
	cookie := commitAndCookie(t, sm, sess)

	loaded := reload(t, sm, cookie)
	assert.True(t, loaded.Authenticated())
	assert.Equal(t, "tok", loaded.AccessToken())
	assert.Equal(t, "admin", loaded.User())
	assert.Equal(t, "ko", loaded.Language())
	var nav map[string]string
	assert.True(t, loaded.GetJSON("nav", &nav))
	assert.Equal(t, "unit", nav["selected"])
	assert.False(t, loaded.GetJSON("missing", &nav))
}

func TestDestroyRemovesSession(t *testing.T) {
	sm, mr := newSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetAccessToken("tok")
	cookie := commitAndCookie(t, sm, sess)
	assert.True(t, mr.Exists(sm.key(sess.ID)))

	loaded := reload(t, sm, cookie)
	sm.Destroy(loaded)
	expired := commitAndCookie(t, sm, loaded)
	assert.Equal(t, -1, expired.MaxAge)
	assert.False(t, mr.Exists(sm.key(sess.ID)))
}

func TestStoreKeyHidesCookieValue(t *testing.T) {
	sm, mr := newSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	cookie := commitAndCookie(t, sm, sess)

	assert.False(t, mr.Exists("session:"+cookie.Value))
	assert.True(t, mr.Exists(sm.key(cookie.Value)))
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	sm, _ := newSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "forged"})

	sess, err := sm.Load(context.Background(), req)

	require.NoError(t, err)
	assert.NotEqual(t, "forged", sess.ID)
	assert.False(t, sess.Authenticated())
}
