// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"
	"testing"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/services"
	"github.com/desertthunder/acx/internal/shared"
)

// docSet is an ordered in-memory collection.
type docSet struct {
	order []string
	data  map[string]map[string]any
}

func (s *docSet) put(id string, data map[string]any) {
	if s.data == nil {
		s.data = make(map[string]map[string]any)
	}
	if _, ok := s.data[id]; !ok {
		s.order = append(s.order, id)
	}
	s.data[id] = data
}

func (s *docSet) list(q services.Query) []models.Document {
	docs := []models.Document{}
	for _, id := range s.order {
		data := s.data[id]
		if q.Field != "" && !reflect.DeepEqual(data[q.Field], q.Value) {
			continue
		}
		docs = append(docs, models.Document{ID: id, Data: data})
		if q.Limit > 0 && len(docs) == q.Limit {
			break
		}
	}
	return docs
}

// MockSourceStore is an in-memory [services.SourceStore].
type MockSourceStore struct {
	mu         sync.Mutex
	docs       docSet
	principals map[string]*models.AuthPrincipal

	ListErr      error // returned by ListDocuments
	PrincipalErr error // returned by GetPrincipal for every UID
	Lists        int   // ListDocuments calls
}

// NewMockSourceStore creates an empty source store.
func NewMockSourceStore() *MockSourceStore {
	return &MockSourceStore{principals: make(map[string]*models.AuthPrincipal)}
}

// AddDocument appends a profile document in enumeration order.
func (m *MockSourceStore) AddDocument(id string, data map[string]any) *MockSourceStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs.put(id, data)
	return m
}

// AddPrincipal registers the auth account paired with a profile.
func (m *MockSourceStore) AddPrincipal(p models.AuthPrincipal) *MockSourceStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.principals[p.UID] = &p
	return m
}

func (m *MockSourceStore) Name() string { return "source" }

func (m *MockSourceStore) ListDocuments(ctx context.Context, q services.Query) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lists++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.docs.list(q), nil
}

func (m *MockSourceStore) GetPrincipal(ctx context.Context, uid string) (*models.AuthPrincipal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PrincipalErr != nil {
		return nil, m.PrincipalErr
	}
	p, ok := m.principals[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPrincipalNotFound, uid)
	}
	cp := *p
	return &cp, nil
}

// MockDestinationStore is an in-memory [services.DestinationStore] with error injection and write counters.
type MockDestinationStore struct {
	mu         sync.Mutex
	docs       docSet
	principals map[string]*models.AuthPrincipal
	passwords  map[string]string
	nextUID    int

	LookupErr          error // returned by GetPrincipalByEmail
	QueryErr           error // returned by ListDocuments
	CreatePrincipalErr error
	CreateProfileErr   error
	DeleteErr          error
	UpdateErr          error

	PrincipalWrites int
	ProfileWrites   int
	Deletes         int
	Updates         int
}

// NewMockDestinationStore creates an empty destination store.
func NewMockDestinationStore() *MockDestinationStore {
	return &MockDestinationStore{
		principals: make(map[string]*models.AuthPrincipal),
		passwords:  make(map[string]string),
	}
}

// AddDocument stores a raw profile document without counting it as a write.
func (m *MockDestinationStore) AddDocument(id string, data map[string]any) *MockDestinationStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs.put(id, data)
	return m
}

// AddPrincipal registers an existing account without counting it as a write.
func (m *MockDestinationStore) AddPrincipal(p models.AuthPrincipal) *MockDestinationStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.principals[p.UID] = &p
	return m
}

// Writes returns the number of mutating calls, including failed ones.
func (m *MockDestinationStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PrincipalWrites + m.ProfileWrites + m.Deletes + m.Updates
}

// Principals returns a copy of every account, keyed by UID.
func (m *MockDestinationStore) Principals() map[string]models.AuthPrincipal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.AuthPrincipal, len(m.principals))
	for uid, p := range m.principals {
		out[uid] = *p
	}
	return out
}

// Password returns the password an account was created with.
func (m *MockDestinationStore) Password(uid string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passwords[uid]
}

// Document returns the stored data for id.
func (m *MockDestinationStore) Document(id string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs.data[id]
	return d, ok
}

// DocumentCount returns the number of stored documents.
func (m *MockDestinationStore) DocumentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs.order)
}

func (m *MockDestinationStore) Name() string { return "destination" }

func (m *MockDestinationStore) ListDocuments(ctx context.Context, q services.Query) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.docs.list(q), nil
}

func (m *MockDestinationStore) GetPrincipalByEmail(ctx context.Context, email string) (*models.AuthPrincipal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	if p := m.findByEmail(email); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPrincipalNotFound, email)
}

func (m *MockDestinationStore) CreatePrincipal(ctx context.Context, p models.PrincipalToCreate) (*models.AuthPrincipal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PrincipalWrites++
	if m.CreatePrincipalErr != nil {
		return nil, m.CreatePrincipalErr
	}
	if m.findByEmail(p.Email) != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrEmailExists, p.Email)
	}

	m.nextUID++
	created := &models.AuthPrincipal{
		UID:           fmt.Sprintf("dst-%03d", m.nextUID),
		Email:         p.Email,
		DisplayName:   p.DisplayName,
		EmailVerified: p.EmailVerified,
		Disabled:      p.Disabled,
	}
	m.principals[created.UID] = created
	m.passwords[created.UID] = p.Password

	cp := *created
	return &cp, nil
}

func (m *MockDestinationStore) DeletePrincipal(ctx context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.principals[uid]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrPrincipalNotFound, uid)
	}
	delete(m.principals, uid)
	return nil
}

func (m *MockDestinationStore) CreateProfile(ctx context.Context, uid string, profile *models.DestinationProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfileWrites++
	if m.CreateProfileErr != nil {
		return m.CreateProfileErr
	}
	if _, ok := m.docs.data[uid]; ok {
		return fmt.Errorf("%w: %s", shared.ErrProfileExists, uid)
	}
	m.docs.put(uid, ProfileFields(profile))
	return nil
}

func (m *MockDestinationStore) UpdateDocuments(ctx context.Context, updates []models.DocumentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates += len(updates)
	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	var errs []error
	for _, u := range updates {
		data, ok := m.docs.data[u.ID]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: document not found", u.ID))
			continue
		}
		for k, v := range u.Fields {
			data[k] = v
		}
	}
	return errors.Join(errs...)
}

func (m *MockDestinationStore) findByEmail(email string) *models.AuthPrincipal {
	for _, p := range m.principals {
		if shared.NormalizeEmail(p.Email) == shared.NormalizeEmail(email) {
			return p
		}
	}
	return nil
}

// ProfileFields flattens a profile to the field map a document database would store.
func ProfileFields(p *models.DestinationProfile) map[string]any {
	fields := map[string]any{
		"uid":               p.UID,
		"email":             p.Email,
		"accountType":       p.AccountType,
		"matricule":         p.Matricule,
		"nom":               p.Nom,
		"telephones":        append([]string{}, p.Telephones...),
		"fonction":          p.Fonction,
		"zoneActuelle":      p.ZoneActuelle,
		"infosZoneActuelle": p.InfosZoneActuelle,
		"zonesSouhaitees":   append([]string{}, p.ZonesSouhaitees...),
		"createdAt":         p.CreatedAt,
		"updatedAt":         p.UpdatedAt,
		"isOnline":          p.IsOnline,
		"isVerified":        p.IsVerified,
		"isAdmin":           p.IsAdmin,
		"showContactInfo":   p.ShowContactInfo,
		"profileViewsCount": p.ProfileViewsCount,
		"freeQuotaUsed":     p.FreeQuotaUsed,
		"freeQuotaLimit":    p.FreeQuotaLimit,
	}
	if p.DREN != nil {
		fields["dren"] = *p.DREN
	} else {
		fields["dren"] = nil
	}
	return fields
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Compile-time interface checks.
var (
	_ services.SourceStore      = (*MockSourceStore)(nil)
	_ services.DestinationStore = (*MockDestinationStore)(nil)
)
