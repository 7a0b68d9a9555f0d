package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/V4T54L/rentwise/internal/domain"
)

// Store is an in-memory domain.Store for use-case tests. Do snapshots the
// whole state and restores it when fn fails, mimicking a rolled back
// transaction. Errors can be injected per operation through FailOn, keyed by
// "<Repo>.<Method>" (e.g. "Properties.AddResident").
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   state

	FailOn map[string]error
	Calls  []string
	TxRuns int
}

type state struct {
	nextID       int64
	applications map[int64]domain.Application
	leases       map[int64]domain.Lease
	payments     map[int64]domain.Payment
	properties   map[int64]domain.Property
	tenants      map[string]domain.Tenant
	managers     map[string]domain.Manager
	residents    map[int64]map[string]struct{}
	favorites    map[string]map[int64]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		FailOn: map[string]error{},
		st: state{
			applications: map[int64]domain.Application{},
			leases:       map[int64]domain.Lease{},
			payments:     map[int64]domain.Payment{},
			properties:   map[int64]domain.Property{},
			tenants:      map[string]domain.Tenant{},
			managers:     map[string]domain.Manager{},
			residents:    map[int64]map[string]struct{}{},
			favorites:    map[string]map[int64]struct{}{},
		},
	}
}

func (s state) clone() state {
	c := state{
		nextID:       s.nextID,
		applications: make(map[int64]domain.Application, len(s.applications)),
		leases:       make(map[int64]domain.Lease, len(s.leases)),
		payments:     make(map[int64]domain.Payment, len(s.payments)),
		properties:   make(map[int64]domain.Property, len(s.properties)),
		tenants:      make(map[string]domain.Tenant, len(s.tenants)),
		managers:     make(map[string]domain.Manager, len(s.managers)),
		residents:    make(map[int64]map[string]struct{}, len(s.residents)),
		favorites:    make(map[string]map[int64]struct{}, len(s.favorites)),
	}
	for k, v := range s.applications {
		c.applications[k] = v
	}
	for k, v := range s.leases {
		c.leases[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.properties {
		c.properties[k] = v
	}
	for k, v := range s.tenants {
		c.tenants[k] = v
	}
	for k, v := range s.managers {
		c.managers[k] = v
	}
	for k, set := range s.residents {
		c.residents[k] = make(map[string]struct{}, len(set))
		for t := range set {
			c.residents[k][t] = struct{}{}
		}
	}
	for k, set := range s.favorites {
		c.favorites[k] = make(map[int64]struct{}, len(set))
		for p := range set {
			c.favorites[k][p] = struct{}{}
		}
	}
	return c
}

func (s *Store) call(op string) error {
	s.Calls = append(s.Calls, op)
	return s.FailOn[op]
}

func (s *Store) id() int64 {
	s.st.nextID++
	return s.st.nextID
}

// --- seeding and inspection helpers ---

// AddManager seeds a manager.
func (s *Store) AddManager(m domain.Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.managers[m.CognitoID] = m
}

// AddTenant seeds a tenant.
func (s *Store) AddTenant(t domain.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Favorites = nil
	s.st.tenants[t.CognitoID] = t
}

// AddProperty seeds a property and returns its ID.
func (s *Store) AddProperty(p domain.Property) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	} else if p.ID > s.st.nextID {
		s.st.nextID = p.ID
	}
	s.st.properties[p.ID] = p
	return p.ID
}

// AddApplication seeds an application and returns its ID.
func (s *Store) AddApplication(a domain.Application) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.id()
	} else if a.ID > s.st.nextID {
		s.st.nextID = a.ID
	}
	s.st.applications[a.ID] = a
	return a.ID
}

// AddLease seeds a lease and returns its ID.
func (s *Store) AddLease(l domain.Lease) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	s.st.leases[l.ID] = l
	return l.ID
}

// AddPayment seeds a payment.
func (s *Store) AddPayment(p domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.st.payments[p.ID] = p
}

// LeaseCount returns the number of stored leases.
func (s *Store) LeaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.leases)
}

// ApplicationCount returns the number of stored applications.
func (s *Store) ApplicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.applications)
}

// Lease returns a stored lease.
func (s *Store) Lease(id int64) (domain.Lease, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.st.leases[id]
	return l, ok
}

// Application returns a stored application.
func (s *Store) Application(id int64) (domain.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.applications[id]
	return a, ok
}

// Residents returns the sorted tenant IDs living in the property.
func (s *Store) Residents(propertyID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.st.residents[propertyID]))
	for t := range s.st.residents[propertyID] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FavoriteCount returns the size of the tenant's favorites set.
func (s *Store) FavoriteCount(tenantID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.favorites[tenantID])
}

// --- domain.Store ---

func (s *Store) Applications() domain.ApplicationRepository { return applicationRepo{s} }
func (s *Store) Leases() domain.LeaseRepository             { return leaseRepo{s} }
func (s *Store) Payments() domain.PaymentRepository         { return paymentRepo{s} }
func (s *Store) Properties() domain.PropertyRepository      { return propertyRepo{s} }
func (s *Store) Tenants() domain.TenantRepository           { return tenantRepo{s} }
func (s *Store) Managers() domain.ManagerRepository         { return managerRepo{s} }

func (s *Store) Do(ctx context.Context, fn func(tx domain.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.TxRuns++
	if err := s.call("Store.Begin"); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// expandProperty fills location-independent relations; callers hold mu.
func (s *Store) expandProperty(p domain.Property) domain.Property {
	if m, ok := s.st.managers[p.ManagerCognitoID]; ok {
		mc := m
		p.Manager = &mc
	}
	return p
}

type applicationRepo struct{ s *Store }

func (r applicationRepo) expand(a domain.Application, withLease bool) domain.Application {
	if p, ok := r.s.st.properties[a.PropertyID]; ok {
		pc := r.s.expandProperty(p)
		a.Property = &pc
	}
	if t, ok := r.s.st.tenants[a.TenantCognitoID]; ok {
		tc := t
		a.Tenant = &tc
	}
	if withLease && a.LeaseID != nil {
		if l, ok := r.s.st.leases[*a.LeaseID]; ok {
			lc := l
			a.Lease = &lc
		}
	}
	return a
}

func (r applicationRepo) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Applications.List"); err != nil {
		return nil, err
	}
	out := []domain.Application{}
	for _, a := range r.s.st.applications {
		if filter.TenantID != "" && a.TenantCognitoID != filter.TenantID {
			continue
		}
		if filter.ManagerID != "" && r.s.st.properties[a.PropertyID].ManagerCognitoID != filter.ManagerID {
			continue
		}
		out = append(out, r.expand(a, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r applicationRepo) FindByID(ctx context.Context, id int64) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Applications.FindByID"); err != nil {
		return nil, err
	}
	a, ok := r.s.st.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a = r.expand(a, true)
	return &a, nil
}

func (r applicationRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Applications.FindByIDForUpdate"); err != nil {
		return nil, err
	}
	a, ok := r.s.st.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a = r.expand(a, false)
	return &a, nil
}

func (r applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Applications.Create"); err != nil {
		return err
	}
	if _, ok := r.s.st.properties[app.PropertyID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.st.tenants[app.TenantCognitoID]; !ok {
		return domain.ErrNotFound
	}
	app.ID = r.s.id()
	stored := *app
	stored.Property, stored.Tenant, stored.Lease = nil, nil, nil
	r.s.st.applications[app.ID] = stored
	return nil
}

func (r applicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus, leaseID *int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Applications.UpdateStatus"); err != nil {
		return err
	}
	a, ok := r.s.st.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	if leaseID != nil {
		v := *leaseID
		a.LeaseID = &v
	}
	r.s.st.applications[id] = a
	return nil
}

type leaseRepo struct{ s *Store }

func (r leaseRepo) Create(ctx context.Context, lease *domain.Lease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Leases.Create"); err != nil {
		return err
	}
	if _, ok := r.s.st.properties[lease.PropertyID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.st.tenants[lease.TenantCognitoID]; !ok {
		return domain.ErrNotFound
	}
	lease.ID = r.s.id()
	stored := *lease
	stored.Tenant, stored.Property = nil, nil
	r.s.st.leases[lease.ID] = stored
	return nil
}

func (r leaseRepo) FindByID(ctx context.Context, id int64) (*domain.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Leases.FindByID"); err != nil {
		return nil, err
	}
	l, ok := r.s.st.leases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r leaseRepo) LatestFor(ctx context.Context, tenantID string, propertyID int64) (*domain.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Leases.LatestFor"); err != nil {
		return nil, err
	}
	var latest *domain.Lease
	for _, l := range r.s.st.leases {
		if l.TenantCognitoID != tenantID || l.PropertyID != propertyID {
			continue
		}
		if latest == nil || l.StartDate.After(latest.StartDate) || (l.StartDate.Equal(latest.StartDate) && l.ID > latest.ID) {
			lc := l
			latest = &lc
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (r leaseRepo) List(ctx context.Context, filter domain.LeaseFilter) ([]domain.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Leases.List"); err != nil {
		return nil, err
	}
	out := []domain.Lease{}
	for _, l := range r.s.st.leases {
		p := r.s.st.properties[l.PropertyID]
		if filter.TenantID != "" && l.TenantCognitoID != filter.TenantID {
			continue
		}
		if filter.ManagerID != "" && p.ManagerCognitoID != filter.ManagerID {
			continue
		}
		pc := p
		l.Property = &pc
		if t, ok := r.s.st.tenants[l.TenantCognitoID]; ok {
			tc := t
			l.Tenant = &tc
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r leaseRepo) DeleteIfUnpaid(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Leases.DeleteIfUnpaid"); err != nil {
		return false, err
	}
	if _, ok := r.s.st.leases[id]; !ok {
		return false, nil
	}
	for _, p := range r.s.st.payments {
		if p.LeaseID == id {
			return false, nil
		}
	}
	for _, a := range r.s.st.applications {
		if a.LeaseID != nil && *a.LeaseID == id {
			return false, nil
		}
	}
	delete(r.s.st.leases, id)
	return true, nil
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) ListByLease(ctx context.Context, leaseID int64) ([]domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Payments.ListByLease"); err != nil {
		return nil, err
	}
	out := []domain.Payment{}
	for _, p := range r.s.st.payments {
		if p.LeaseID == leaseID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

type propertyRepo struct{ s *Store }

func (r propertyRepo) FindByID(ctx context.Context, id int64) (*domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Properties.FindByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.st.properties[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = r.s.expandProperty(p)
	return &p, nil
}

func (r propertyRepo) Search(ctx context.Context, search domain.PropertySearch) ([]domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Properties.Search"); err != nil {
		return nil, err
	}
	out := []domain.Property{}
	for _, p := range r.s.st.properties {
		if search.PriceMin != nil && p.PricePerMonth < *search.PriceMin {
			continue
		}
		if search.PriceMax != nil && p.PricePerMonth > *search.PriceMax {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r propertyRepo) ListByManager(ctx context.Context, managerID string) ([]domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Properties.ListByManager"); err != nil {
		return nil, err
	}
	out := []domain.Property{}
	for _, p := range r.s.st.properties {
		if p.ManagerCognitoID == managerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r propertyRepo) ListByResident(ctx context.Context, tenantID string) ([]domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Properties.ListByResident"); err != nil {
		return nil, err
	}
	out := []domain.Property{}
	for pid, set := range r.s.st.residents {
		if _, ok := set[tenantID]; ok {
			out = append(out, r.s.st.properties[pid])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r propertyRepo) Create(ctx context.Context, p *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Properties.Create"); err != nil {
		return err
	}
	if _, ok := r.s.st.managers[p.ManagerCognitoID]; !ok {
		return domain.ErrNotFound
	}
	if p.Location != nil {
		p.Location.ID = r.s.id()
		p.LocationID = p.Location.ID
	}
	p.ID = r.s.id()
	stored := *p
	stored.Manager = nil
	r.s.st.properties[p.ID] = stored
	return nil
}

func (r propertyRepo) AddResident(ctx context.Context, propertyID int64, tenantID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Properties.AddResident"); err != nil {
		return err
	}
	if _, ok := r.s.st.properties[propertyID]; !ok {
		return domain.ErrNotFound
	}
	if r.s.st.residents[propertyID] == nil {
		r.s.st.residents[propertyID] = map[string]struct{}{}
	}
	r.s.st.residents[propertyID][tenantID] = struct{}{}
	return nil
}

type tenantRepo struct{ s *Store }

func (r tenantRepo) FindByID(ctx context.Context, cognitoID string) (*domain.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Tenants.FindByID"); err != nil {
		return nil, err
	}
	t, ok := r.s.st.tenants[cognitoID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t.Favorites = []domain.Property{}
	for pid := range r.s.st.favorites[cognitoID] {
		t.Favorites = append(t.Favorites, r.s.st.properties[pid])
	}
	sort.Slice(t.Favorites, func(i, j int) bool { return t.Favorites[i].ID < t.Favorites[j].ID })
	return &t, nil
}

func (r tenantRepo) Create(ctx context.Context, p domain.Profile) (*domain.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Tenants.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.st.tenants[p.CognitoID]; ok {
		return nil, domain.ErrConflict
	}
	t := domain.Tenant{CognitoID: p.CognitoID, Name: p.Name, Email: p.Email, PhoneNumber: p.PhoneNumber}
	r.s.st.tenants[p.CognitoID] = t
	return &t, nil
}

func (r tenantRepo) Update(ctx context.Context, p domain.Profile) (*domain.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Tenants.Update"); err != nil {
		return nil, err
	}
	if _, ok := r.s.st.tenants[p.CognitoID]; !ok {
		return nil, domain.ErrNotFound
	}
	t := domain.Tenant{CognitoID: p.CognitoID, Name: p.Name, Email: p.Email, PhoneNumber: p.PhoneNumber}
	r.s.st.tenants[p.CognitoID] = t
	return &t, nil
}

func (r tenantRepo) AddFavorite(ctx context.Context, tenantID string, propertyID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Tenants.AddFavorite"); err != nil {
		return false, err
	}
	if _, ok := r.s.st.properties[propertyID]; !ok {
		return false, domain.ErrNotFound
	}
	set := r.s.st.favorites[tenantID]
	if set == nil {
		set = map[int64]struct{}{}
		r.s.st.favorites[tenantID] = set
	}
	if _, ok := set[propertyID]; ok {
		return false, nil
	}
	set[propertyID] = struct{}{}
	return true, nil
}

func (r tenantRepo) RemoveFavorite(ctx context.Context, tenantID string, propertyID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Tenants.RemoveFavorite"); err != nil {
		return err
	}
	delete(r.s.st.favorites[tenantID], propertyID)
	return nil
}

type managerRepo struct{ s *Store }

func (r managerRepo) FindByID(ctx context.Context, cognitoID string) (*domain.Manager, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Managers.FindByID"); err != nil {
		return nil, err
	}
	m, ok := r.s.st.managers[cognitoID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (r managerRepo) Create(ctx context.Context, p domain.Profile) (*domain.Manager, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Managers.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.st.managers[p.CognitoID]; ok {
		return nil, domain.ErrConflict
	}
	m := domain.Manager{CognitoID: p.CognitoID, Name: p.Name, Email: p.Email, PhoneNumber: p.PhoneNumber}
	r.s.st.managers[p.CognitoID] = m
	return &m, nil
}

func (r managerRepo) Update(ctx context.Context, p domain.Profile) (*domain.Manager, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.call("Managers.Update"); err != nil {
		return nil, err
	}
	if _, ok := r.s.st.managers[p.CognitoID]; !ok {
		return nil, domain.ErrNotFound
	}
	m := domain.Manager{CognitoID: p.CognitoID, Name: p.Name, Email: p.Email, PhoneNumber: p.PhoneNumber}
	r.s.st.managers[p.CognitoID] = m
	return &m, nil
}
