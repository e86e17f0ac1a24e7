package webutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRoundTrip(t *testing.T) {
	// First response sets the flash.
	rec := httptest.NewRecorder()
	SetFlash(rec, "success", "Student added!")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	// Next request carries the cookie and pops the message.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()

	flash := PopFlash(rec2, req)
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Category)
	assert.Equal(t, "Student added!", flash.Message)

	// Popping clears the cookie.
	var cleared bool
	for _, c := range rec2.Result().Cookies() {
		if c.Name == "flash" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "flash cookie should be expired after pop")
}

func TestPopFlashWithoutCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	assert.Nil(t, PopFlash(rec, req))
}
