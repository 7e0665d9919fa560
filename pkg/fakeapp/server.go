// Package fakeapp is an in-process W3C WebDriver server that serves a small
// scripted Android UI. It implements the endpoints pkg/appium calls so the
// helper, page objects and scenarios can be exercised without a device.
package fakeapp

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/appium"
)

// Common Android widget classes.
const (
	ClassTextView = "android.widget.TextView"
	ClassEditText = "android.widget.EditText"
	ClassButton   = "android.widget.Button"
)

const (
	screenWidth  = 1080
	screenHeight = 2340
)

// Element describes one view on a screen.
type Element struct {
	ResourceID string
	Class      string
	Text       string
	// Editable elements accept typed values; typing replaces the text.
	Editable bool
	// Hidden elements are in the hierarchy but report displayed=false.
	Hidden bool
	// Disabled elements swallow clicks.
	Disabled bool
	// AppearAfter keeps the element out of the hierarchy for this long after
	// its screen is shown.
	AppearAfter time.Duration
	// OnClick runs with the server lock held.
	OnClick func(*State)
}

// Screen is a named set of elements.
type Screen struct {
	Name     string
	Elements []Element
}

type node struct {
	Element
	ref       string
	added     time.Time
	transient bool
}

// Server is a fake Appium server. All methods are safe for concurrent use.
type Server struct {
	mu sync.Mutex
	ts *httptest.Server

	screens map[string]Screen
	initial string
	current string
	nodes   []*node
	refs    map[string]*node
	nextRef int

	sessions map[string]map[string]interface{}
	created  int
	lastCaps map[string]interface{}

	clicks    map[string]int
	hides     int
	findErr   *appium.WebDriverError
	launchErr *appium.WebDriverError
	onReset   func(*State)
}

// New starts a server showing the first screen.
func New(screens ...Screen) *Server {
	if len(screens) == 0 {
		panic("fakeapp: at least one screen is required")
	}

	s := &Server{
		screens:  make(map[string]Screen, len(screens)),
		initial:  screens[0].Name,
		sessions: make(map[string]map[string]interface{}),
		clicks:   make(map[string]int),
	}
	for _, sc := range screens {
		s.screens[sc.Name] = sc
	}
	s.show(s.initial)

	s.ts = httptest.NewServer(s.routes())
	return s
}

// URL returns the base URL to pass to appium.NewClient.
func (s *Server) URL() string {
	return s.ts.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.ts.Close()
}

// Screen returns the name of the screen being shown.
func (s *Server) Screen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Show switches to the named screen, as if the app navigated there.
func (s *Server) Show(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.show(name)
}

// Add places an element on the current screen until the next screen change.
func (s *Server) Add(el Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(el)
}

// Input returns the text of the first element with the resource ID on the
// current screen.
func (s *Server) Input(resourceID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&State{s: s}).Input(resourceID)
}

// Clicks returns how many clicks reached an enabled element with the resource ID.
func (s *Server) Clicks(resourceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks[resourceID]
}

// KeyboardHides returns how many hide-keyboard requests were received.
func (s *Server) KeyboardHides() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hides
}

// SessionsCreated returns the number of sessions ever created.
func (s *Server) SessionsCreated() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// ActiveSessions returns the number of sessions not yet deleted.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// LastCapabilities returns the capabilities of the most recent session.
func (s *Server) LastCapabilities() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCaps
}

// FailFinds makes every find-element request fail with the W3C code until
// called again with an empty code.
func (s *Server) FailFinds(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == "" {
		s.findErr = nil
		return
	}
	s.findErr = &appium.WebDriverError{Status: statusFor(code), Code: code, Message: message}
}

// FailLaunch makes every app launch request (startActivity and activate_app)
// fail with the W3C code until called again with an empty code. Sessions are
// still created, so the client is left holding one it must delete.
func (s *Server) FailLaunch(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == "" {
		s.launchErr = nil
		return
	}
	s.launchErr = &appium.WebDriverError{Status: statusFor(code), Code: code, Message: message}
}

// State is the mutable app state handed to click handlers.
type State struct {
	s *Server
}

// Show switches to the named screen.
func (st *State) Show(name string) {
	st.s.show(name)
}

// Screen returns the current screen name.
func (st *State) Screen() string {
	return st.s.current
}

// Add places an element on the current screen until the next screen change.
func (st *State) Add(el Element) {
	st.s.add(el)
}

// Remove drops every element with the resource ID from the current screen.
// References to removed elements become stale.
func (st *State) Remove(resourceID string) {
	st.s.remove(func(n *node) bool { return n.ResourceID == resourceID })
}

// ClearMessages drops every element added since the screen was shown.
func (st *State) ClearMessages() {
	st.s.remove(func(n *node) bool { return n.transient })
}

// Input returns the text of the first element with the resource ID.
func (st *State) Input(resourceID string) string {
	for _, n := range st.s.nodes {
		if n.ResourceID == resourceID {
			return n.Text
		}
	}
	return ""
}

// ClearInputs empties every editable element on the current screen.
func (st *State) ClearInputs() {
	for _, n := range st.s.nodes {
		if n.Editable {
			n.Text = ""
		}
	}
}

// show rebuilds the hierarchy for the named screen and invalidates every
// element reference handed out so far.
func (s *Server) show(name string) {
	sc, ok := s.screens[name]
	if !ok {
		panic(fmt.Sprintf("fakeapp: unknown screen %q", name))
	}

	now := time.Now()
	s.current = name
	s.refs = make(map[string]*node)
	s.nodes = make([]*node, 0, len(sc.Elements))
	for _, el := range sc.Elements {
		s.nodes = append(s.nodes, &node{Element: el, added: now})
	}
}

func (s *Server) add(el Element) {
	s.nodes = append(s.nodes, &node{Element: el, added: time.Now(), transient: true})
}

func (s *Server) remove(match func(*node) bool) {
	kept := s.nodes[:0]
	for _, n := range s.nodes {
		if match(n) {
			if n.ref != "" {
				delete(s.refs, n.ref)
			}
			continue
		}
		kept = append(kept, n)
	}
	s.nodes = kept
}

// reset returns the app to a fresh launch.
func (s *Server) reset(clearData bool) {
	s.show(s.initial)
	if clearData && s.onReset != nil {
		s.onReset(&State{s: s})
	}
}

func (s *Server) present(n *node, now time.Time) bool {
	return now.Sub(n.added) >= n.AppearAfter
}

func (s *Server) find(using, value string) (string, *appium.WebDriverError) {
	if s.findErr != nil {
		return "", s.findErr
	}

	match, err := compileQuery(using, value)
	if err != nil {
		return "", &appium.WebDriverError{Status: http.StatusBadRequest, Code: appium.CodeInvalidSelector, Message: err.Error()}
	}

	now := time.Now()
	for _, n := range s.nodes {
		if !s.present(n, now) || !match(n) {
			continue
		}
		if n.ref == "" {
			s.nextRef++
			n.ref = fmt.Sprintf("el-%d", s.nextRef)
		}
		s.refs[n.ref] = n
		return n.ref, nil
	}

	return "", &appium.WebDriverError{
		Status:  http.StatusNotFound,
		Code:    appium.CodeNoSuchElement,
		Message: fmt.Sprintf("An element could not be located on the page using the given search parameters (%s=%s)", using, value),
	}
}

func (s *Server) element(ref string) (*node, *appium.WebDriverError) {
	n, ok := s.refs[ref]
	if !ok {
		return nil, &appium.WebDriverError{
			Status:  http.StatusNotFound,
			Code:    appium.CodeStaleElement,
			Message: fmt.Sprintf("The element '%s' does not exist in DOM anymore", ref),
		}
	}
	return n, nil
}

// HTTP layer

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /session", s.handleNewSession)
	mux.HandleFunc("DELETE /session/{sid}", s.withSession(s.handleDeleteSession))
	mux.HandleFunc("GET /session/{sid}/window/rect", s.withSession(s.handleWindowRect))
	mux.HandleFunc("POST /session/{sid}/timeouts", s.withSession(s.handleNoop))
	mux.HandleFunc("POST /session/{sid}/appium/settings", s.withSession(s.handleNoop))
	mux.HandleFunc("POST /session/{sid}/appium/device/hide_keyboard", s.withSession(s.handleHideKeyboard))
	mux.HandleFunc("POST /session/{sid}/appium/device/activate_app", s.withSession(s.handleActivateApp))
	mux.HandleFunc("POST /session/{sid}/execute/sync", s.withSession(s.handleExecute))
	mux.HandleFunc("GET /session/{sid}/screenshot", s.withSession(s.handleScreenshot))
	mux.HandleFunc("GET /session/{sid}/source", s.withSession(s.handleSource))
	mux.HandleFunc("POST /session/{sid}/element", s.withSession(s.handleFind))
	mux.HandleFunc("GET /session/{sid}/element/{eid}/{prop}", s.withSession(s.handleProperty))
	mux.HandleFunc("POST /session/{sid}/element/{eid}/{action}", s.withSession(s.handleAction))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, &appium.WebDriverError{
			Status:  http.StatusNotFound,
			Code:    appium.CodeUnknownCommand,
			Message: fmt.Sprintf("%s %s is not implemented", r.Method, r.URL.Path),
		})
	})

	return mux
}

// withSession rejects requests for unknown sessions and holds the lock for
// the duration of the handler.
func (s *Server) withSession(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.sessions[r.PathValue("sid")]; !ok {
			writeError(w, &appium.WebDriverError{
				Status:  http.StatusNotFound,
				Code:    appium.CodeInvalidSessionID,
				Message: "A session is either terminated or not started",
			})
			return
		}
		h(w, r)
	}
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Capabilities struct {
			AlwaysMatch map[string]interface{} `json:"alwaysMatch"`
		} `json:"capabilities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &appium.WebDriverError{Status: http.StatusBadRequest, Code: appium.CodeInvalidArgument, Message: err.Error()})
		return
	}
	caps := body.Capabilities.AlwaysMatch

	platform, _ := caps["platformName"].(string)
	if !strings.EqualFold(platform, "android") {
		writeError(w, &appium.WebDriverError{
			Status:  http.StatusInternalServerError,
			Code:    appium.CodeSessionNotCreated,
			Message: fmt.Sprintf("platformName %q is not supported", platform),
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = caps
	s.created++
	s.lastCaps = caps

	noReset, _ := caps["appium:noReset"].(bool)
	s.reset(!noReset)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": id,
		"capabilities": map[string]interface{}{
			"platformName":   "Android",
			"automationName": caps["appium:automationName"],
			"deviceName":     caps["appium:deviceName"],
		},
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	delete(s.sessions, r.PathValue("sid"))
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleWindowRect(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"x": 0, "y": 0, "width": screenWidth, "height": screenHeight,
	})
}

func (s *Server) handleNoop(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleHideKeyboard(w http.ResponseWriter, _ *http.Request) {
	s.hides++
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleActivateApp(w http.ResponseWriter, _ *http.Request) {
	if s.launchErr != nil {
		writeError(w, s.launchErr)
		return
	}
	s.reset(false)
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Script string `json:"script"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &appium.WebDriverError{Status: http.StatusBadRequest, Code: appium.CodeInvalidArgument, Message: err.Error()})
		return
	}

	switch body.Script {
	case "mobile: startActivity":
		if s.launchErr != nil {
			writeError(w, s.launchErr)
			return
		}
		s.reset(false)
		writeJSON(w, http.StatusOK, nil)
	default:
		writeError(w, &appium.WebDriverError{
			Status:  http.StatusNotFound,
			Code:    appium.CodeUnknownCommand,
			Message: fmt.Sprintf("unsupported script %q", body.Script),
		})
	}
}

func (s *Server) handleScreenshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, base64.StdEncoding.EncodeToString(screenshotPNG()))
}

func (s *Server) handleSource(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.source())
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Using string `json:"using"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &appium.WebDriverError{Status: http.StatusBadRequest, Code: appium.CodeInvalidArgument, Message: err.Error()})
		return
	}

	ref, wdErr := s.find(body.Using, body.Value)
	if wdErr != nil {
		writeError(w, wdErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"element-6066-11e4-a52e-4f735466cecf": ref,
		"ELEMENT":                             ref,
	})
}

func (s *Server) handleProperty(w http.ResponseWriter, r *http.Request) {
	n, wdErr := s.element(r.PathValue("eid"))
	if wdErr != nil {
		writeError(w, wdErr)
		return
	}

	switch r.PathValue("prop") {
	case "text":
		writeJSON(w, http.StatusOK, n.Text)
	case "displayed":
		writeJSON(w, http.StatusOK, !n.Hidden)
	case "enabled":
		writeJSON(w, http.StatusOK, !n.Disabled)
	case "name":
		writeJSON(w, http.StatusOK, n.Class)
	default:
		writeError(w, &appium.WebDriverError{Status: http.StatusNotFound, Code: appium.CodeUnknownCommand, Message: "unknown element property " + r.PathValue("prop")})
	}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	n, wdErr := s.element(r.PathValue("eid"))
	if wdErr != nil {
		writeError(w, wdErr)
		return
	}

	switch r.PathValue("action") {
	case "click":
		if !n.Disabled {
			s.clicks[n.ResourceID]++
			if n.OnClick != nil {
				n.OnClick(&State{s: s})
			}
		}
		writeJSON(w, http.StatusOK, nil)

	case "value":
		var body struct {
			Text  string   `json:"text"`
			Value []string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, &appium.WebDriverError{Status: http.StatusBadRequest, Code: appium.CodeInvalidArgument, Message: err.Error()})
			return
		}
		if n.Hidden || n.Disabled || !n.Editable {
			writeError(w, &appium.WebDriverError{Status: http.StatusBadRequest, Code: appium.CodeNotInteractable, Message: "element cannot accept text"})
			return
		}
		text := body.Text
		if text == "" && len(body.Value) > 0 {
			text = strings.Join(body.Value, "")
		}
		n.Text = text
		writeJSON(w, http.StatusOK, nil)

	default:
		writeError(w, &appium.WebDriverError{Status: http.StatusNotFound, Code: appium.CodeUnknownCommand, Message: "unknown element action " + r.PathValue("action")})
	}
}

// source renders the present elements as a UiAutomator2-style hierarchy.
func (s *Server) source() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<hierarchy rotation="0" width="%d" height="%d">`+"\n", screenWidth, screenHeight)

	now := time.Now()
	for _, n := range s.nodes {
		if !s.present(n, now) {
			continue
		}
		class := n.Class
		if class == "" {
			class = "android.view.View"
		}
		fmt.Fprintf(&b, `  <%s class=%s resource-id=%s text=%s displayed="%t" enabled="%t"/>`+"\n",
			class, xmlAttr(class), xmlAttr(n.ResourceID), xmlAttr(n.Text), !n.Hidden, !n.Disabled)
	}

	b.WriteString("</hierarchy>\n")
	return b.String()
}

func xmlAttr(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return `"` + b.String() + `"`
}

var (
	pngOnce  sync.Once
	pngBytes []byte
)

// screenshotPNG returns a small solid PNG.
func screenshotPNG() []byte {
	pngOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 4, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 4; x++ {
				img.Set(x, y, color.RGBA{R: 0x3f, G: 0x51, B: 0xb5, A: 0xff})
			}
		}
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		pngBytes = buf.Bytes()
	})
	return pngBytes
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"value": value})
}

func writeError(w http.ResponseWriter, e *appium.WebDriverError) {
	status := e.Status
	if status == 0 {
		status = statusFor(e.Code)
	}
	writeJSON(w, status, map[string]interface{}{
		"error":      e.Code,
		"message":    e.Message,
		"stacktrace": "",
	})
}

func statusFor(code string) int {
	switch code {
	case appium.CodeNoSuchElement, appium.CodeStaleElement, appium.CodeInvalidSessionID, appium.CodeUnknownCommand:
		return http.StatusNotFound
	case appium.CodeInvalidSelector, appium.CodeInvalidArgument, appium.CodeNotInteractable, appium.CodeElementClickBlocked:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
