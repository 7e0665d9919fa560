package fakeapp

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/appium"
)

var androidCaps = map[string]interface{}{
	"platformName":          "Android",
	"appium:automationName": "UiAutomator2",
	"appium:noReset":        true,
}

func connect(t *testing.T, url string) *appium.Client {
	t.Helper()
	caps := make(map[string]interface{}, len(androidCaps))
	for k, v := range androidCaps {
		caps[k] = v
	}
	client := appium.NewClient(url)
	require.NoError(t, client.Connect(context.Background(), caps))
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv := New(Screen{Name: "main"})
	defer srv.Close()

	client := connect(t, srv.URL())
	ctx := context.Background()
	assert.NotEmpty(t, client.SessionID())
	assert.Equal(t, "android", client.Platform())
	w, h := client.ScreenSize()
	assert.Equal(t, 1080, w)
	assert.Equal(t, 2340, h)
	assert.Equal(t, 1, srv.ActiveSessions())
	assert.Equal(t, "UiAutomator2", srv.LastCapabilities()["appium:automationName"])

	require.NoError(t, client.Disconnect(ctx))
	assert.Equal(t, 0, srv.ActiveSessions())
	assert.Equal(t, 1, srv.SessionsCreated())
}

func TestServer_UnknownSession(t *testing.T) {
	srv := New(Screen{Name: "main"})
	defer srv.Close()

	resp, err := http.Get(srv.URL() + "/session/deleted-session/source")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Value struct {
			Error string `json:"error"`
		} `json:"value"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, appium.CodeInvalidSessionID, body.Value.Error)
}

func TestServer_RejectsNonAndroid(t *testing.T) {
	srv := New(Screen{Name: "main"})
	defer srv.Close()

	err := appium.NewClient(srv.URL()).Connect(context.Background(), map[string]interface{}{"platformName": "iOS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), appium.CodeSessionNotCreated)
}

func TestServer_FindAndInteract(t *testing.T) {
	srv := New(Screen{Name: "main", Elements: []Element{
		{ResourceID: "app:id/input", Class: ClassEditText, Editable: true},
		{ResourceID: "app:id/label", Class: ClassTextView, Text: "Hello"},
		{ResourceID: "app:id/hidden", Class: ClassTextView, Hidden: true},
		{ResourceID: "app:id/off", Class: ClassButton, Disabled: true},
	}})
	defer srv.Close()
	client := connect(t, srv.URL())
	ctx := context.Background()

	input, err := client.FindElement(ctx, "id", "app:id/input")
	require.NoError(t, err)
	require.NoError(t, client.SendElementValue(ctx, input, "typed"))
	text, err := client.GetElementText(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "typed", text)
	assert.Equal(t, "typed", srv.Input("app:id/input"))

	// Typing replaces rather than appends.
	require.NoError(t, client.SendElementValue(ctx, input, "again"))
	text, _ = client.GetElementText(ctx, input)
	assert.Equal(t, "again", text)

	label, err := client.FindElement(ctx, "xpath", "//android.widget.TextView[@text='Hello']")
	require.NoError(t, err)
	err = client.SendElementValue(ctx, label, "nope")
	assert.Error(t, err)

	hidden, err := client.FindElement(ctx, "id", "hidden")
	require.NoError(t, err)
	displayed, err := client.IsElementDisplayed(ctx, hidden)
	require.NoError(t, err)
	assert.False(t, displayed)

	off, err := client.FindElement(ctx, "id", "off")
	require.NoError(t, err)
	enabled, err := client.IsElementEnabled(ctx, off)
	require.NoError(t, err)
	assert.False(t, enabled)
	require.NoError(t, client.ClickElement(ctx, off))
	assert.Equal(t, 0, srv.Clicks("app:id/off"))

	assert.NoError(t, client.HideKeyboard(ctx))
	assert.Equal(t, 1, srv.KeyboardHides())
}

func TestServer_NotFoundAndInvalidSelector(t *testing.T) {
	srv := New(Screen{Name: "main"})
	defer srv.Close()
	client := connect(t, srv.URL())
	ctx := context.Background()

	_, err := client.FindElement(ctx, "id", "missing")
	assert.True(t, appium.IsNoSuchElement(err))

	_, err = client.FindElement(ctx, "xpath", "not an xpath")
	var wdErr *appium.WebDriverError
	require.ErrorAs(t, err, &wdErr)
	assert.Equal(t, appium.CodeInvalidSelector, wdErr.Code)
}

func TestServer_AppearAfter(t *testing.T) {
	srv := New(Screen{Name: "main", Elements: []Element{
		{ResourceID: "app:id/late", Class: ClassTextView, AppearAfter: 150 * time.Millisecond},
	}})
	defer srv.Close()
	client := connect(t, srv.URL())
	ctx := context.Background()

	_, err := client.FindElement(ctx, "id", "late")
	assert.True(t, appium.IsNoSuchElement(err))

	assert.Eventually(t, func() bool {
		_, err := client.FindElement(ctx, "id", "late")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServer_StaleAfterScreenChange(t *testing.T) {
	srv := New(
		Screen{Name: "first", Elements: []Element{
			{ResourceID: "app:id/next", Class: ClassButton, OnClick: func(st *State) { st.Show("second") }},
		}},
		Screen{Name: "second"},
	)
	defer srv.Close()
	client := connect(t, srv.URL())
	ctx := context.Background()

	next, err := client.FindElement(ctx, "id", "next")
	require.NoError(t, err)
	require.NoError(t, client.ClickElement(ctx, next))
	assert.Equal(t, "second", srv.Screen())
	assert.Equal(t, 1, srv.Clicks("app:id/next"))

	_, err = client.IsElementDisplayed(ctx, next)
	assert.True(t, appium.IsStaleElement(err))
}

func TestServer_FailFinds(t *testing.T) {
	srv := New(Screen{Name: "main", Elements: []Element{{ResourceID: "app:id/x"}}})
	defer srv.Close()
	client := connect(t, srv.URL())
	ctx := context.Background()

	srv.FailFinds(appium.CodeUnknownError, "instrumentation crashed")
	_, err := client.FindElement(ctx, "id", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instrumentation crashed")

	srv.FailFinds("", "")
	_, err = client.FindElement(ctx, "id", "x")
	assert.NoError(t, err)
}

func TestServer_Diagnostics(t *testing.T) {
	srv := New(Screen{Name: "main", Elements: []Element{
		{ResourceID: "app:id/label", Class: ClassTextView, Text: `a <b> & "c"`},
	}})
	defer srv.Close()
	client := connect(t, srv.URL())
	ctx := context.Background()

	shot, err := client.Screenshot(ctx)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(shot))
	assert.NoError(t, err)

	src, err := client.Source(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, "<?xml"))
	assert.Contains(t, src, `resource-id="app:id/label"`)
	assert.Contains(t, src, "a &lt;b&gt; &amp; &#34;c&#34;")
}

func TestServer_NoResetFalseLaunchesApp(t *testing.T) {
	srv := New(Screen{Name: "home"}, Screen{Name: "other"})
	defer srv.Close()
	srv.Show("other")

	ctx := context.Background()
	client := appium.NewClient(srv.URL())
	require.NoError(t, client.Connect(ctx, map[string]interface{}{
		"platformName":       "Android",
		"appium:noReset":     false,
		"appium:appPackage":  AppPackage,
		"appium:appActivity": ".activities.LoginActivity",
	}))
	defer client.Disconnect(ctx)

	assert.Equal(t, "home", srv.Screen())
	assert.Equal(t, false, srv.LastCapabilities()["appium:autoLaunch"])
}

func TestServer_FailLaunch(t *testing.T) {
	srv := New(Screen{Name: "home"})
	defer srv.Close()
	ctx := context.Background()

	srv.FailLaunch(appium.CodeUnknownError, "Activity class does not exist")
	client := appium.NewClient(srv.URL())
	err := client.Connect(ctx, map[string]interface{}{
		"platformName":       "Android",
		"appium:noReset":     false,
		"appium:appPackage":  AppPackage,
		"appium:appActivity": ".activities.Missing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Activity class does not exist")
	assert.Equal(t, 1, srv.ActiveSessions(), "the session outlives a failed launch")

	require.NoError(t, client.Disconnect(ctx))
	assert.Equal(t, 0, srv.ActiveSessions())

	srv.FailLaunch("", "")
	require.NoError(t, client.Connect(ctx, map[string]interface{}{
		"platformName":      "Android",
		"appium:noReset":    false,
		"appium:appPackage": AppPackage,
	}))
	assert.NoError(t, client.Disconnect(ctx))
}
