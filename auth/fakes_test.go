package auth

import (
	"context"
	"sync"

	"github.com/user/banconova-go/captcha"
)

type fakeStore struct {
	mu          sync.Mutex
	users       map[string]*User
	accounts    map[int64]*Account
	nextID      int64
	existsErr   error
	createErr   error
	findErr     error
	created     int
	existsCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*User{}, accounts: map[int64]*Account{}, nextID: 1}
}

func (f *fakeStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Create(_ context.Context, user *User, account *Account) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	u := *user
	u.ID = f.nextID
	f.nextID++
	f.users[u.Username] = &u
	a := *account
	a.UserID = u.ID
	f.accounts[u.ID] = &a
	f.created++
	return u.ID, nil
}

func (f *fakeStore) FindCredentials(_ context.Context, username string) (*Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &Credentials{UserID: u.ID, PasswordHash: u.PasswordHash}, nil
}

func (f *fakeStore) LoadProfile(_ context.Context, userID int64) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			p := &Profile{UserID: u.ID, Name: fullName(u.FirstName, u.LastName)}
			if a, ok := f.accounts[u.ID]; ok {
				p.Balance = a.Balance
				p.CardNumber = a.CardNumber
			}
			return p, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) setBalance(username string, balance float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[f.users[username].ID].Balance = balance
}

type fakeVerifier struct {
	result  *captcha.Result
	err     error
	calls   int
	lastIP  string
	lastTok string
}

func (f *fakeVerifier) Verify(_ context.Context, token, remoteIP string) (*captcha.Result, error) {
	f.calls++
	f.lastTok = token
	f.lastIP = remoteIP
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// plainHasher keeps tests fast; it is never used outside tests.
type plainHasher struct {
	dummyCalls int
}

func (h *plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (h *plainHasher) Compare(hash, password string) (bool, error) {
	return hash == "hashed:"+password, nil
}

func (h *plainHasher) CompareDummy(string) { h.dummyCalls++ }
