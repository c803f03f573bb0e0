package session

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const cookiePath = "/home/tester/.xiaohongshu_publisher/cookies.json"

func newTestStore(t *testing.T) (*Store, afero.Fs, *observer.ObservedLogs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewStore(cookiePath, WithFs(fs), WithLogger(zap.New(core))), fs, logs
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _, _ := newTestStore(t)

	cookies := []Cookie{
		{Name: "web_session", Value: "abc", Domain: ".xiaohongshu.com", Path: "/", Secure: true, HTTPOnly: playwright.Bool(false), Expires: playwright.Float(1893456000)},
		{Name: "a1", Value: "xyz"},
		{Name: "a1", Value: "dup", SameSite: "Lax"},
	}

	require.NoError(t, store.Save(cookies))
	loaded := store.Load()

	assert.Equal(t, Normalize(cookies, ".xiaohongshu.com"), loaded)
	require.Len(t, loaded, 3, "duplicates by name are kept")
	assert.Equal(t, ".xiaohongshu.com", loaded[1].Domain)
	assert.Equal(t, "/", loaded[1].Path)
	assert.False(t, loaded[1].Secure)
	require.NotNil(t, loaded[1].HTTPOnly)
	assert.True(t, *loaded[1].HTTPOnly)
	assert.False(t, *loaded[0].HTTPOnly, "explicit httpOnly=false survives")
}

func TestSaveDropsIncompleteRecords(t *testing.T) {
	store, _, _ := newTestStore(t)

	require.NoError(t, store.Save([]Cookie{
		{Name: "", Value: "orphan"},
		{Name: "token", Value: ""},
		{Name: "web_session", Value: "ok"},
	}))

	loaded := store.Load()
	require.Len(t, loaded, 1)
	assert.Equal(t, "web_session", loaded[0].Name)
}

func TestSaveWithoutValidCookiesKeepsFile(t *testing.T) {
	store, fs, logs := newTestStore(t)
	require.NoError(t, store.Save([]Cookie{{Name: "web_session", Value: "ok"}}))

	err := store.Save([]Cookie{{Name: "token", Value: ""}})
	assert.ErrorIs(t, err, ErrNoCookies)
	assert.ErrorIs(t, store.Save(nil), ErrNoCookies)

	loaded := store.Load()
	require.Len(t, loaded, 1)
	assert.Equal(t, "ok", loaded[0].Value)
	assert.Equal(t, 2, logs.FilterMessageSnippet("没有有效的cookies").Len())

	entries, err := afero.ReadDir(fs, "/home/tester/.xiaohongshu_publisher")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveNothingDoesNotCreateFile(t *testing.T) {
	store, fs, _ := newTestStore(t)

	assert.ErrorIs(t, store.Save([]Cookie{}), ErrNoCookies)
	exists, err := afero.Exists(fs, cookiePath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveDropsSessionExpiry(t *testing.T) {
	store, _, _ := newTestStore(t)

	require.NoError(t, store.Save([]Cookie{{Name: "a1", Value: "v", Expires: playwright.Float(-1)}}))
	assert.Nil(t, store.Load()[0].Expires)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store, fs, _ := newTestStore(t)
	require.NoError(t, store.Save([]Cookie{{Name: "a1", Value: "v"}}))
	require.NoError(t, store.Save([]Cookie{{Name: "a1", Value: "w"}}))

	entries, err := afero.ReadDir(fs, "/home/tester/.xiaohongshu_publisher")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cookies.json", entries[0].Name())
	assert.Equal(t, "w", store.Load()[0].Value)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	store, _, logs := newTestStore(t)

	loaded := store.Load()
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len(), "a missing file is not worth a warning")
}

func TestLoadMalformedFileIsEmptyWithWarning(t *testing.T) {
	store, fs, logs := newTestStore(t)
	require.NoError(t, afero.WriteFile(fs, cookiePath, []byte("{not json"), 0600))

	assert.Empty(t, store.Load())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestClearIsIdempotent(t *testing.T) {
	store, fs, _ := newTestStore(t)
	require.NoError(t, store.Save([]Cookie{{Name: "web_session", Value: "v"}}))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	exists, err := afero.Exists(fs, cookiePath)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, store.Load())
}

func TestIsValid(t *testing.T) {
	store, _, _ := newTestStore(t)

	assert.False(t, store.IsValid(nil))
	assert.False(t, store.IsValid([]Cookie{}))
	assert.False(t, store.IsValid([]Cookie{{Name: "a1", Value: "x"}, {Name: "webId", Value: "y"}}))

	for _, name := range DefaultValidNames {
		assert.True(t, store.IsValid([]Cookie{{Name: name, Value: "x"}}), name)
	}
	assert.True(t, store.IsValid([]Cookie{{Name: "Customer-SSO-TOKEN", Value: "x"}}), "substring, case-insensitive")
}

func TestIsValidCustomNames(t *testing.T) {
	store := NewStore(cookiePath, WithFs(afero.NewMemMapFs()), WithValidNames([]string{"galaxy"}))

	assert.True(t, store.IsValid([]Cookie{{Name: "galaxy_creator_session_id", Value: "x"}}))
	assert.False(t, store.IsValid([]Cookie{{Name: "web_session", Value: "x"}}))
}

func TestIsImportant(t *testing.T) {
	store, _, _ := newTestStore(t)

	assert.True(t, store.IsImportant(Cookie{Name: "web_session"}))
	assert.True(t, store.IsImportant(Cookie{Name: "a1"}))
	assert.False(t, store.IsImportant(Cookie{Name: "webId"}))
}

func TestPlaywrightConversion(t *testing.T) {
	pw := []playwright.Cookie{
		{Name: "web_session", Value: "abc", Domain: ".xiaohongshu.com", Path: "/", HttpOnly: true, Secure: true, Expires: 1893456000, SameSite: playwright.SameSiteAttributeLax},
		{Name: "a1", Value: "v", Domain: "creator.xiaohongshu.com", Path: "/", Expires: -1},
	}

	cookies := FromPlaywright(pw)
	require.Len(t, cookies, 2)
	assert.Equal(t, "Lax", cookies[0].SameSite)
	assert.Nil(t, cookies[1].Expires)

	back := ToPlaywright(cookies, ".xiaohongshu.com")
	require.Len(t, back, 2)
	assert.Equal(t, "web_session", back[0].Name)
	assert.Equal(t, ".xiaohongshu.com", *back[0].Domain)
	assert.True(t, *back[0].HttpOnly)
	assert.Equal(t, playwright.SameSiteAttributeLax, back[0].SameSite)
	assert.Nil(t, back[1].Expires)
	assert.False(t, *back[1].HttpOnly)
}
