package fakeapp

import (
	"net/mail"
	"strings"
	"sync"
)

// AppPackage is the package of the login module app.
const AppPackage = "com.loginmodule.learning"

// Screen names of the login module app.
const (
	ScreenLogin    = "login"
	ScreenRegister = "register"
	ScreenUsers    = "users"
)

// Messages shown by the login module app.
const (
	MsgEnterValidEmail    = "Enter Valid Email"
	MsgEnterValidPassword = "Enter Valid Password"
	MsgWrongCredentials   = "Wrong Email or Password"
	MsgEnterFullName      = "Enter Full Name"
	MsgEnterPassword      = "Enter Password"
	MsgPasswordMismatch   = "Password Does Not Matches"
	MsgEmailExists        = "Email Already Exists"
	MsgRegistered         = "Registration Successful"
)

// ResourceID returns the fully qualified resource ID for a view name.
func ResourceID(name string) string {
	return AppPackage + ":id/" + name
}

// User is a registered account.
type User struct {
	Name     string
	Email    string
	Password string
}

// LoginApp serves the login, registration and user list screens of the login
// module app, backed by an in-memory user table.
type LoginApp struct {
	*Server

	mu     sync.Mutex
	seed   []User
	users  map[string]User
	order  []string
	signed string
}

// NewLoginApp starts a server with the given users already registered.
// Sessions created with noReset=false wipe the table back to these users.
func NewLoginApp(seed ...User) *LoginApp {
	a := &LoginApp{seed: seed}
	a.resetUsers()

	a.Server = New(a.loginScreen(), a.registerScreen(), a.usersScreen())
	a.Server.onReset = func(*State) { a.resetUsers() }
	return a
}

// HasUser reports whether an account exists for the email.
func (a *LoginApp) HasUser(email string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.users[strings.ToLower(email)]
	return ok
}

// Users returns the registered accounts in registration order.
func (a *LoginApp) Users() []User {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]User, 0, len(a.order))
	for _, email := range a.order {
		out = append(out, a.users[email])
	}
	return out
}

// SignedIn returns the email of the last successful login.
func (a *LoginApp) SignedIn() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signed
}

func (a *LoginApp) resetUsers() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users = make(map[string]User, len(a.seed))
	a.order = a.order[:0]
	a.signed = ""
	for _, u := range a.seed {
		a.addUserLocked(u)
	}
}

func (a *LoginApp) addUserLocked(u User) {
	key := strings.ToLower(u.Email)
	if _, ok := a.users[key]; !ok {
		a.order = append(a.order, key)
	}
	a.users[key] = u
}

func (a *LoginApp) loginScreen() Screen {
	return Screen{
		Name: ScreenLogin,
		Elements: []Element{
			{ResourceID: ResourceID("textInputEditTextEmail"), Class: ClassEditText, Editable: true},
			{ResourceID: ResourceID("textInputEditTextPassword"), Class: ClassEditText, Editable: true},
			{ResourceID: ResourceID("appCompatButtonLogin"), Class: ClassButton, Text: "LOGIN", OnClick: a.login},
			{ResourceID: ResourceID("textViewLinkRegister"), Class: ClassTextView, Text: "No account yet? Create one",
				OnClick: func(st *State) { st.Show(ScreenRegister) }},
		},
	}
}

func (a *LoginApp) registerScreen() Screen {
	return Screen{
		Name: ScreenRegister,
		Elements: []Element{
			{ResourceID: ResourceID("textInputEditTextName"), Class: ClassEditText, Editable: true},
			{ResourceID: ResourceID("textInputEditTextEmail"), Class: ClassEditText, Editable: true},
			{ResourceID: ResourceID("textInputEditTextPassword"), Class: ClassEditText, Editable: true},
			{ResourceID: ResourceID("textInputEditTextConfirmPassword"), Class: ClassEditText, Editable: true},
			{ResourceID: ResourceID("appCompatButtonRegister"), Class: ClassButton, Text: "REGISTER", OnClick: a.register},
			{ResourceID: ResourceID("appCompatTextViewLoginLink"), Class: ClassTextView, Text: "Already a member? Login",
				OnClick: func(st *State) { st.Show(ScreenLogin) }},
		},
	}
}

func (a *LoginApp) usersScreen() Screen {
	return Screen{
		Name: ScreenUsers,
		Elements: []Element{
			{ResourceID: ResourceID("textViewName"), Class: ClassTextView, Text: "Android NewLine Learning"},
		},
	}
}

// login mirrors LoginActivity: field errors first, then a snackbar on
// unknown credentials, otherwise the user list.
func (a *LoginApp) login(st *State) {
	st.ClearMessages()

	email := strings.TrimSpace(st.Input(ResourceID("textInputEditTextEmail")))
	password := strings.TrimSpace(st.Input(ResourceID("textInputEditTextPassword")))

	if email == "" || !validEmail(email) {
		fieldError(st, MsgEnterValidEmail)
		return
	}
	if password == "" {
		fieldError(st, MsgEnterValidPassword)
		return
	}

	a.mu.Lock()
	u, ok := a.users[strings.ToLower(email)]
	if ok && u.Password == password {
		a.signed = u.Email
	}
	rows := make([]User, 0, len(a.order))
	for _, key := range a.order {
		rows = append(rows, a.users[key])
	}
	a.mu.Unlock()

	if !ok || u.Password != password {
		snackbar(st, MsgWrongCredentials)
		return
	}

	st.ClearInputs()
	st.Show(ScreenUsers)
	for _, row := range rows {
		st.Add(Element{ResourceID: ResourceID("textViewName"), Class: ClassTextView, Text: row.Name})
		st.Add(Element{ResourceID: ResourceID("textViewEmail"), Class: ClassTextView, Text: row.Email})
		st.Add(Element{ResourceID: ResourceID("textViewPassword"), Class: ClassTextView, Text: row.Password})
	}
}

// register mirrors RegisterActivity: the first failing check wins.
func (a *LoginApp) register(st *State) {
	st.ClearMessages()

	name := strings.TrimSpace(st.Input(ResourceID("textInputEditTextName")))
	email := strings.TrimSpace(st.Input(ResourceID("textInputEditTextEmail")))
	password := strings.TrimSpace(st.Input(ResourceID("textInputEditTextPassword")))
	confirm := strings.TrimSpace(st.Input(ResourceID("textInputEditTextConfirmPassword")))

	switch {
	case name == "":
		fieldError(st, MsgEnterFullName)
		return
	case email == "" || !validEmail(email):
		fieldError(st, MsgEnterValidEmail)
		return
	case password == "":
		fieldError(st, MsgEnterPassword)
		return
	case password != confirm:
		fieldError(st, MsgPasswordMismatch)
		return
	}

	a.mu.Lock()
	_, exists := a.users[strings.ToLower(email)]
	if !exists {
		a.addUserLocked(User{Name: name, Email: email, Password: password})
	}
	a.mu.Unlock()

	if exists {
		snackbar(st, MsgEmailExists)
		return
	}
	st.ClearInputs()
	snackbar(st, MsgRegistered)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndexByte(s, '@'):], ".")
}

func fieldError(st *State, msg string) {
	st.Add(Element{ResourceID: ResourceID("textinput_error"), Class: ClassTextView, Text: msg})
}

func snackbar(st *State, msg string) {
	st.Add(Element{ResourceID: ResourceID("snackbar_text"), Class: ClassTextView, Text: msg})
}
