package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
	"roadside-service/internal/repository"
)

type fakeRequests struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.ServiceRequest
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{rows: make(map[uuid.UUID]model.ServiceRequest)}
}

func (f *fakeRequests) Create(_ context.Context, req *model.ServiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TrackingCode == req.TrackingCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Version == 0 {
		req.Version = 1
	}
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	f.rows[req.ID] = *req
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakeRequests) GetByTrackingCode(_ context.Context, code string) (*model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TrackingCode == code {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequests) TrackingCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := f.GetByTrackingCode(ctx, code)
	return err == nil, nil
}

func (f *fakeRequests) UpdateVersioned(_ context.Context, req *model.ServiceRequest, expected int, withLocation bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[req.ID]
	if !ok || row.Version != expected {
		return repository.ErrStaleVersion
	}
	if !withLocation {
		req.ProviderLat, req.ProviderLng = row.ProviderLat, row.ProviderLng
	}
	req.Version = expected + 1
	req.UpdatedAt = time.Now()
	f.rows[req.ID] = *req
	return nil
}

func (f *fakeRequests) UpdateProviderLocation(_ context.Context, id uuid.UUID, lat, lng float64) (*model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || !row.Status.RequiresProvider() || row.Status.IsTerminal() {
		return nil, gorm.ErrRecordNotFound
	}
	row.ProviderLat = &lat
	row.ProviderLng = &lng
	row.UpdatedAt = time.Now()
	f.rows[id] = row
	return &row, nil
}

func (f *fakeRequests) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRequests) List(_ context.Context, filter repository.ServiceRequestFilter) ([]model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ServiceRequest
	for _, row := range f.rows {
		switch {
		case filter.Status != nil && row.Status != *filter.Status:
		case filter.ServiceType != nil && row.ServiceType != *filter.ServiceType:
		case filter.ProviderID != nil && (row.ProviderID == nil || *row.ProviderID != *filter.ProviderID):
		case filter.CustomerID != nil && (row.CustomerID == nil || *row.CustomerID != *filter.CustomerID):
		case filter.PhoneNumber != nil && (row.PhoneNumber == nil || *row.PhoneNumber != *filter.PhoneNumber):
		default:
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRequests) ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]model.ServiceRequest, error) {
	all, _ := f.List(ctx, repository.ServiceRequestFilter{ProviderID: &providerID})
	var out []model.ServiceRequest
	for _, row := range all {
		if row.Status.RequiresProvider() && !row.Status.IsTerminal() {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRequests) CountByStatus(context.Context) (map[model.RequestStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[model.RequestStatus]int64)
	for _, row := range f.rows {
		counts[row.Status]++
	}
	return counts, nil
}

func (f *fakeRequests) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if !row.CreatedAt.Before(from) && row.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRequests) get(id uuid.UUID) model.ServiceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *fakeRequests) put(req model.ServiceRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Version == 0 {
		req.Version = 1
	}
	f.rows[req.ID] = req
}

type fakeProfiles struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Profile
	// providers is consulted by ListProviders
	providers map[uuid.UUID]bool
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: make(map[uuid.UUID]model.Profile), providers: make(map[uuid.UUID]bool)}
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakeProfiles) Update(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[p.ID] = *p
	return nil
}

func (f *fakeProfiles) SetAvailability(_ context.Context, id uuid.UUID, available bool, lat, lng *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.IsAvailable = available
	row.CurrentLat = lat
	row.CurrentLng = lng
	f.rows[id] = row
	return nil
}

func (f *fakeProfiles) UpdateLocation(_ context.Context, id uuid.UUID, lat, lng float64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[id]
	row.CurrentLat = &lat
	row.CurrentLng = &lng
	row.LocationUpdatedAt = &at
	f.rows[id] = row
	return nil
}

func (f *fakeProfiles) ListProviders(_ context.Context, onlyAvailable bool) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Profile
	for id, row := range f.rows {
		if !f.providers[id] || (onlyAvailable && !row.IsAvailable) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeProfiles) get(id uuid.UUID) model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

type fakeUsers struct {
	mu       sync.Mutex
	users    map[uuid.UUID]model.User
	roles    map[uuid.UUID]model.Role
	profiles *fakeProfiles
}

func newFakeUsers(profiles *fakeProfiles) *fakeUsers {
	return &fakeUsers{
		users:    make(map[uuid.UUID]model.User),
		roles:    make(map[uuid.UUID]model.Role),
		profiles: profiles,
	}
}

func (f *fakeUsers) CreateAccount(_ context.Context, user *model.User, role model.Role, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = *user
	f.roles[user.ID] = role
	profile.ID = user.ID

	f.profiles.mu.Lock()
	f.profiles.rows[user.ID] = *profile
	f.profiles.providers[user.ID] = role == model.RoleProvider
	f.profiles.mu.Unlock()
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetRole(_ context.Context, id uuid.UUID) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return role, nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	delete(f.roles, id)
	return nil
}

// addProvider registers a provider with a profile, available at lat/lng when
// both are given.
func (f *fakeUsers) addProvider(name string, lat, lng *float64) uuid.UUID {
	id := uuid.New()
	f.mu.Lock()
	f.users[id] = model.User{ID: id, Email: id.String() + "@providers.test"}
	f.roles[id] = model.RoleProvider
	f.mu.Unlock()

	f.profiles.mu.Lock()
	f.profiles.rows[id] = model.Profile{
		ID:          id,
		FullName:    name,
		IsAvailable: lat != nil && lng != nil,
		CurrentLat:  lat,
		CurrentLng:  lng,
	}
	f.profiles.providers[id] = true
	f.profiles.mu.Unlock()
	return id
}

type fakeTransactions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Transaction
	// requests receives the completion written by Settle
	requests *fakeRequests
	// failInsert makes the next inserts fail
	failInsert error
}

func newFakeTransactions(requests *fakeRequests) *fakeTransactions {
	return &fakeTransactions{rows: make(map[uuid.UUID]model.Transaction), requests: requests}
}

func (f *fakeTransactions) Create(_ context.Context, txn *model.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(txn)
}

// Settle inserts txn and writes completed in one step; nothing is stored
// when either part fails.
func (f *fakeTransactions) Settle(ctx context.Context, txn *model.Transaction, completed *model.ServiceRequest, expected int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.insert(txn); err != nil {
		return err
	}
	if completed != nil {
		if err := f.requests.UpdateVersioned(ctx, completed, expected, false); err != nil {
			delete(f.rows, txn.ID)
			return err
		}
	}
	return nil
}

func (f *fakeTransactions) insert(txn *model.Transaction) error {
	if f.failInsert != nil {
		return f.failInsert
	}
	for _, row := range f.rows {
		if row.ServiceRequestID == txn.ServiceRequestID {
			return gorm.ErrDuplicatedKey
		}
	}
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	f.rows[txn.ID] = *txn
	return nil
}

func (f *fakeTransactions) GetByID(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakeTransactions) GetByRequestID(_ context.Context, requestID uuid.UUID) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ServiceRequestID == requestID {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTransactions) Update(_ context.Context, txn *model.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[txn.ID] = *txn
	return nil
}

func (f *fakeTransactions) SumBetween(_ context.Context, from, to time.Time) (repository.Revenue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var r repository.Revenue
	for _, row := range f.rows {
		if row.ConfirmedAt.Before(from) || !row.ConfirmedAt.Before(to) {
			continue
		}
		r.Total += row.Amount
		r.Provider += row.ProviderAmount
		r.Platform += row.PlatformAmount
		r.Count++
	}
	return r, nil
}

type fakeRatings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Rating
}

func newFakeRatings() *fakeRatings {
	return &fakeRatings{rows: make(map[uuid.UUID]model.Rating)}
}

func (f *fakeRatings) Create(_ context.Context, rating *model.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ServiceRequestID == rating.ServiceRequestID && row.CustomerID == rating.CustomerID {
			return gorm.ErrDuplicatedKey
		}
	}
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	f.rows[rating.ID] = *rating
	return nil
}

func (f *fakeRatings) GetByRequestAndCustomer(_ context.Context, requestID, customerID uuid.UUID) (*model.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ServiceRequestID == requestID && row.CustomerID == customerID {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRatings) Update(_ context.Context, rating *model.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[rating.ID] = *rating
	return nil
}

func (f *fakeRatings) ListByProvider(_ context.Context, providerID uuid.UUID) ([]model.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Rating
	for _, row := range f.rows {
		if row.ProviderID == providerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRatings) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Rating
	for _, row := range f.rows {
		if row.ServiceRequestID == requestID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRatings) SummaryForProvider(ctx context.Context, providerID uuid.UUID) (repository.RatingSummary, error) {
	rows, _ := f.ListByProvider(ctx, providerID)
	var s repository.RatingSummary
	for _, row := range rows {
		s.Average += float64(row.Rating)
		s.Count++
	}
	if s.Count > 0 {
		s.Average /= float64(s.Count)
	}
	return s, nil
}

type fakePings struct {
	mu   sync.Mutex
	rows []model.LocationPing
}

func (f *fakePings) Create(_ context.Context, ping *model.LocationPing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *ping)
	return nil
}

func (f *fakePings) GetLastByProviderID(_ context.Context, providerID uuid.UUID) (*model.LocationPing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].ProviderID == providerID {
			ping := f.rows[i]
			return &ping, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakePartnerships struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.PartnershipApplication
}

func newFakePartnerships() *fakePartnerships {
	return &fakePartnerships{rows: make(map[uuid.UUID]model.PartnershipApplication)}
}

func (f *fakePartnerships) Create(_ context.Context, app *model.PartnershipApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	f.rows[app.ID] = *app
	return nil
}

func (f *fakePartnerships) GetByID(_ context.Context, id uuid.UUID) (*model.PartnershipApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakePartnerships) Update(_ context.Context, app *model.PartnershipApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[app.ID] = *app
	return nil
}

func (f *fakePartnerships) List(_ context.Context, status *model.ApplicationStatus) ([]model.PartnershipApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PartnershipApplication
	for _, row := range f.rows {
		if status == nil || row.Status == *status {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeContacts struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.ContactMessage
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{rows: make(map[uuid.UUID]model.ContactMessage)}
}

func (f *fakeContacts) Create(_ context.Context, msg *model.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	f.rows[msg.ID] = *msg
	return nil
}

func (f *fakeContacts) UpdateStatus(_ context.Context, id uuid.UUID, status model.ContactStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Status = status
	f.rows[id] = row
	return nil
}

func (f *fakeContacts) List(_ context.Context, status *model.ContactStatus) ([]model.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ContactMessage
	for _, row := range f.rows {
		if status == nil || row.Status == *status {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeContent struct {
	mu       sync.Mutex
	settings map[string]model.Setting
	docs     map[string]model.LegalDocument
}

func newFakeContent() *fakeContent {
	return &fakeContent{settings: make(map[string]model.Setting), docs: make(map[string]model.LegalDocument)}
}

func (f *fakeContent) ListSettings(context.Context) ([]model.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Setting
	for _, s := range f.settings {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeContent) UpsertSetting(_ context.Context, setting *model.Setting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[setting.Key] = *setting
	return nil
}

func (f *fakeContent) GetLegalDocument(_ context.Context, docType string) (*model.LegalDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docType]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &doc, nil
}

func (f *fakeContent) UpsertLegalDocument(_ context.Context, doc *model.LegalDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.docs[doc.DocType]; ok {
		existing.Title = doc.Title
		existing.Content = doc.Content
		existing.Version++
		f.docs[doc.DocType] = existing
		return nil
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	f.docs[doc.DocType] = *doc
	return nil
}

type publishedEvent struct {
	table string
	typ   realtime.EventType
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	afters []any
}

func (p *recordingPublisher) Publish(table string, typ realtime.EventType, _, after any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{table: table, typ: typ})
	p.afters = append(p.afters, after)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// lastRequest returns the after image of the latest service request event.
func (p *recordingPublisher) lastRequest() *model.ServiceRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].table == realtime.TableServiceRequests {
			req, _ := p.afters[i].(*model.ServiceRequest)
			return req
		}
	}
	return nil
}

func (p *recordingPublisher) last() publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return publishedEvent{}
	}
	return p.events[len(p.events)-1]
}

type sentMail struct {
	kind     string
	to       string
	password string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendPartnerWelcome(_ context.Context, to, _, temporaryPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "partner_welcome", to: to, password: temporaryPassword})
	return nil
}

func (m *fakeMailer) SendContactAck(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "contact_ack", to: to})
	return nil
}

func adminPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
}

func customerPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}
}

func providerPrincipal(id uuid.UUID) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleProvider}
}

func floatPtr(v float64) *float64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func intPtr(v int) *int {
	return &v
}
