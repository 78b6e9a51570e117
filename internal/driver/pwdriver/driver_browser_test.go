//go:build browser

package pwdriver_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themizzi/storefrontqa/internal/browser"
	"github.com/themizzi/storefrontqa/internal/driver/pwdriver"
)

var launcher *pwdriver.Launcher

func TestMain(m *testing.M) {
	var err error
	launcher, err = pwdriver.Launch(pwdriver.Options{Headless: true}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to launch browser: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	_ = launcher.Close()
	os.Exit(code)
}

const fixturePage = `<!doctype html>
<html><head><title>Fixture Store</title></head>
<body>
  <h1 id="heading">  Register Account  </h1>
  <p id="preview">Preview text</p>
  <form id="register" onsubmit="event.preventDefault(); document.getElementById('done').style.display='block';">
    <input type="text" id="input-firstname" name="firstname">
    <input type="email" id="input-email" name="email">
    <input type="password" id="input-password" name="password">
    <button type="submit" id="continue">Continue</button>
    <div id="cover" style="position:absolute;top:0;left:0;width:100%;height:100%;display:none"></div>
  </form>
  <p id="done" style="display:none">Your account has been successfully created!</p>
  <select id="input-country">
    <option value="">--- Please Select ---</option>
    <option value="222">United Kingdom</option>
    <option value="223">United States</option>
  </select>
  <ul><li class="row">a</li><li class="row">b</li><li class="row">c</li></ul>
  <script>
    if (location.search.includes('cover')) {
      var cover = document.getElementById('cover');
      cover.style.display = 'block';
      var c = document.getElementById('continue');
      c.style.position = 'relative';
      cover.style.zIndex = '10';
    }
  </script>
</body></html>`

func newFixture(t *testing.T) (*browser.Page, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, fixturePage)
	}))
	t.Cleanup(srv.Close)

	d, closeCtx, err := launcher.NewContext()
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeCtx() })

	p := browser.NewPage(d, browser.WithBaseURL(srv.URL), browser.WithNavigationTimeout(10*time.Second))
	require.NoError(t, p.Navigate("/"))
	return p, srv.URL
}

func TestWaitForMissingElementTimesOut(t *testing.T) {
	p, _ := newFixture(t)

	start := time.Now()
	err := p.Waiter().WaitFor(browser.CSS("#nowhere"), browser.StateVisible, 500*time.Millisecond)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, browser.ErrTimeoutExceeded)
	assert.GreaterOrEqual(t, elapsed, 500*time.Millisecond)
	assert.Less(t, elapsed, 1500*time.Millisecond)
}

func TestWaitForVisibleElementIsFast(t *testing.T) {
	p, _ := newFixture(t)

	start := time.Now()
	require.NoError(t, p.Waiter().WaitFor(browser.CSS("#heading"), browser.StateVisible, 3*time.Second))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGetTextAndFill(t *testing.T) {
	p, _ := newFixture(t)

	text, err := p.GetText(browser.CSS("#heading"))
	require.NoError(t, err)
	assert.Equal(t, "Register Account", text)

	require.NoError(t, p.Fill(browser.CSS("#input-firstname"), "Ada"))
	require.NoError(t, p.Fill(browser.CSS("#input-firstname"), ""))
	v, err := p.InputValue(browser.CSS("#input-firstname"))
	require.NoError(t, err)
	assert.Equal(t, "", v)

	preview, err := p.GetText(browser.CSS("#preview"))
	require.NoError(t, err)
	assert.Equal(t, "Preview text", preview)
}

func TestSelectOptionUnknownLabelKeepsSelection(t *testing.T) {
	p, _ := newFixture(t)
	country := browser.CSS("#input-country")

	require.NoError(t, p.SelectOption(country, "United States"))
	err := p.SelectOption(country, "Nonexistent Label")
	assert.ErrorIs(t, err, browser.ErrOptionNotFound)

	v, err := p.InputValue(country)
	require.NoError(t, err)
	assert.Equal(t, "223", v)
}

func TestCountAndRoleAndText(t *testing.T) {
	p, _ := newFixture(t)

	n, err := p.Count(browser.CSS(".row"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = p.Count(browser.CSS("#nowhere"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.True(t, p.IsVisible(browser.Role("button", "continue")))
	assert.True(t, p.IsVisible(browser.Text("Preview")))
	assert.False(t, p.IsVisible(browser.Text("successfully created"), browser.WithTimeout(200*time.Millisecond)))
}

func TestSubmitFallsBackToEnterWhenButtonCovered(t *testing.T) {
	p, _ := newFixture(t)
	require.NoError(t, p.Navigate("/?cover=1"))

	err := p.Submit(browser.CSS("#continue"), browser.Text("successfully created"), browser.WithTimeout(2*time.Second))

	require.NoError(t, err)
	assert.True(t, p.IsVisible(browser.Text("successfully created")))
}
