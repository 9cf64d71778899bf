// Package servicetest provides in-memory implementations of the service
// storage ports.  Booking transactions are serialized by one mutex and
// rolled back from a snapshot when they fail, which gives the same
// all-or-nothing behaviour the MySQL row locks give in production.
package servicetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

// DB is the shared state behind all stores.
type DB struct {
	txMu sync.Mutex // held for the whole of a booking transaction
	mu   sync.Mutex // guards the maps

	nextID     uint64
	users      map[uint64]model.User
	otps       map[uint64]model.OneTimePassword
	tokens     map[string]token
	resets     map[uint64]reset
	hotels     map[uint64]model.Hotel
	categories map[uint64]model.RoomCategory
	rooms      map[uint64]model.Room
	bookings   map[uint64]model.Booking
	reviews    map[uint64]model.Review
	reports    map[uint64]model.FinanceReport

	// TxErrors are returned, in order, by the next InTx calls instead of
	// running the transaction.  Used to simulate deadlocks.
	TxErrors []error
	// TxCalls counts InTx invocations.
	TxCalls int
}

type reset struct {
	hash string
	exp  time.Time
}

type token struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{
		users:      map[uint64]model.User{},
		otps:       map[uint64]model.OneTimePassword{},
		tokens:     map[string]token{},
		resets:     map[uint64]reset{},
		hotels:     map[uint64]model.Hotel{},
		categories: map[uint64]model.RoomCategory{},
		rooms:      map[uint64]model.Room{},
		bookings:   map[uint64]model.Booking{},
		reviews:    map[uint64]model.Review{},
		reports:    map[uint64]model.FinanceReport{},
	}
}

func (db *DB) id() uint64 {
	db.nextID++
	return db.nextID
}

// Room returns the stored room, for assertions.
func (db *DB) Room(id uint64) model.Room {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.rooms[id]
}

// Bookings returns every stored booking, for assertions.
func (db *DB) Bookings() []model.Booking {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]model.Booking, 0, len(db.bookings))
	for _, b := range db.bookings {
		out = append(out, b)
	}
	return out
}

// OTP returns the stored code of a user, for assertions.
func (db *DB) OTP(userID uint64) (model.OneTimePassword, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	o, ok := db.otps[userID]
	return o, ok
}

// SeedUser inserts a verified user without hashing cost concerns.
func (db *DB) SeedUser(email string, role model.Role) model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := model.User{ID: db.id(), Email: email, Role: role, IsActive: true, IsVerified: true, CreatedAt: time.Now().UTC()}
	db.users[u.ID] = u
	return u
}

// SeedHotel inserts a hotel in the given state.
func (db *DB) SeedHotel(adminID uint64, name string, approved bool) model.Hotel {
	db.mu.Lock()
	defer db.mu.Unlock()
	h := model.Hotel{ID: db.id(), AdminID: adminID, Name: name, Address: name + " street", IsApproved: approved, CreatedAt: time.Now().UTC()}
	db.hotels[h.ID] = h
	return h
}

// SeedRoom inserts a category with price and one available room in it.
func (db *DB) SeedRoom(hotelID uint64, number string, price model.Cents) model.Room {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := model.RoomCategory{ID: db.id(), HotelID: hotelID, Name: "standard", Price: price}
	db.categories[c.ID] = c
	r := model.Room{ID: db.id(), HotelID: hotelID, CategoryID: c.ID, Category: c.Name, Price: price, Number: number, IsAvailable: true}
	db.rooms[r.ID] = r
	return r
}

// ---- booking store ----

// Bookings implements service.BookingStore.
type Bookings struct{ DB *DB }

func (s Bookings) InTx(ctx context.Context, fn func(repository.BookingTx) error) error {
	db := s.DB
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	db.TxCalls++
	if len(db.TxErrors) > 0 {
		err := db.TxErrors[0]
		db.TxErrors = db.TxErrors[1:]
		db.mu.Unlock()
		return err
	}
	rooms := make(map[uint64]model.Room, len(db.rooms))
	for k, v := range db.rooms {
		rooms[k] = v
	}
	bookings := make(map[uint64]model.Booking, len(db.bookings))
	for k, v := range db.bookings {
		bookings[k] = v
	}
	nextID := db.nextID
	db.mu.Unlock()

	if err := fn(&memTx{db: db}); err != nil {
		db.mu.Lock()
		db.rooms, db.bookings, db.nextID = rooms, bookings, nextID
		db.mu.Unlock()
		return err
	}
	return nil
}

func (s Bookings) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	b, ok := s.DB.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return b, nil
}

func (s Bookings) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.DB.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s Bookings) PaidTotalsByHotel(ctx context.Context, hotelID uint64) (int, model.Cents, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	var (
		n   int
		sum model.Cents
	)
	for _, b := range s.DB.bookings {
		if b.HotelID == hotelID && b.PaymentStatus == model.StatusPaid {
			n++
			sum += b.Price
		}
	}
	return n, sum, nil
}

type memTx struct{ db *DB }

func (t *memTx) LockRoom(ctx context.Context, roomID uint64) (model.RoomLock, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	r, ok := t.db.rooms[roomID]
	if !ok {
		return model.RoomLock{}, repository.ErrNotFound
	}
	return model.RoomLock{
		RoomID:        r.ID,
		HotelID:       r.HotelID,
		IsAvailable:   r.IsAvailable,
		HotelApproved: t.db.hotels[r.HotelID].IsApproved,
		Price:         t.db.categories[r.CategoryID].Price,
	}, nil
}

func (t *memTx) RoomIDOf(ctx context.Context, bookingID uint64) (uint64, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	b, ok := t.db.bookings[bookingID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return b.RoomID, nil
}

func (t *memTx) LockBooking(ctx context.Context, bookingID uint64) (model.Booking, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	b, ok := t.db.bookings[bookingID]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return b, nil
}

func (t *memTx) Insert(ctx context.Context, b *model.Booking) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	b.ID = t.db.id()
	b.CreatedAt = time.Now().UTC()
	t.db.bookings[b.ID] = *b
	return nil
}

func (t *memTx) UpdateStatus(ctx context.Context, bookingID uint64, status model.PaymentStatus, paid *model.Cents) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	b, ok := t.db.bookings[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	b.PaymentStatus = status
	if paid != nil {
		v := *paid
		b.PaidAmount = &v
	}
	t.db.bookings[bookingID] = b
	return nil
}

func (t *memTx) MarkCheckedOut(ctx context.Context, bookingID uint64) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	b, ok := t.db.bookings[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	b.IsCheckedOut = true
	t.db.bookings[bookingID] = b
	return nil
}

func (t *memTx) SetRoomAvailable(ctx context.Context, roomID uint64, available bool) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	r, ok := t.db.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	r.IsAvailable = available
	t.db.rooms[roomID] = r
	return nil
}

// ---- hotels ----

// Hotels implements service.HotelStore.
type Hotels struct{ DB *DB }

func (s Hotels) Create(ctx context.Context, adminID uint64, name, address string) (model.Hotel, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	h := model.Hotel{ID: s.DB.id(), AdminID: adminID, Name: name, Address: address, CreatedAt: time.Now().UTC()}
	s.DB.hotels[h.ID] = h
	return h, nil
}

func (s Hotels) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	h, ok := s.DB.hotels[id]
	if !ok {
		return model.Hotel{}, repository.ErrNotFound
	}
	return h, nil
}

func (s Hotels) list(keep func(model.Hotel) bool) []model.Hotel {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	out := []model.Hotel{}
	for id := uint64(1); id <= s.DB.nextID; id++ {
		if h, ok := s.DB.hotels[id]; ok && keep(h) {
			out = append(out, h)
		}
	}
	return out
}

func (s Hotels) ListApproved(ctx context.Context) ([]model.Hotel, error) {
	return s.list(func(h model.Hotel) bool { return h.IsApproved }), nil
}

func (s Hotels) ListPending(ctx context.Context) ([]model.Hotel, error) {
	return s.list(func(h model.Hotel) bool { return h.State() == model.HotelPending }), nil
}

func (s Hotels) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Hotel, error) {
	return s.list(func(h model.Hotel) bool { return h.AdminID == adminID }), nil
}

func (s Hotels) SetApproval(ctx context.Context, id uint64, approved bool) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	h, ok := s.DB.hotels[id]
	if !ok {
		return repository.ErrNotFound
	}
	h.IsApproved, h.IsDeclined = approved, !approved
	s.DB.hotels[id] = h
	return nil
}

// Delete cascades like the foreign keys do.
func (s Hotels) Delete(ctx context.Context, id uint64) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	if _, ok := s.DB.hotels[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.DB.hotels, id)
	for k, r := range s.DB.rooms {
		if r.HotelID == id {
			delete(s.DB.rooms, k)
		}
	}
	for k, c := range s.DB.categories {
		if c.HotelID == id {
			delete(s.DB.categories, k)
		}
	}
	for k, b := range s.DB.bookings {
		if b.HotelID == id {
			delete(s.DB.bookings, k)
		}
	}
	for k, r := range s.DB.reviews {
		if r.HotelID == id {
			delete(s.DB.reviews, k)
		}
	}
	for k, r := range s.DB.reports {
		if r.HotelID == id {
			delete(s.DB.reports, k)
		}
	}
	return nil
}

// ---- categories and rooms ----

// Categories implements service.CategoryStore.
type Categories struct{ DB *DB }

func (s Categories) Create(ctx context.Context, hotelID uint64, name string, price model.Cents) (model.RoomCategory, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	c := model.RoomCategory{ID: s.DB.id(), HotelID: hotelID, Name: name, Price: price}
	s.DB.categories[c.ID] = c
	return c, nil
}

func (s Categories) GetByID(ctx context.Context, id uint64) (model.RoomCategory, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	c, ok := s.DB.categories[id]
	if !ok {
		return model.RoomCategory{}, repository.ErrNotFound
	}
	return c, nil
}

func (s Categories) ListByHotel(ctx context.Context, hotelID uint64) ([]model.RoomCategory, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	out := []model.RoomCategory{}
	for id := uint64(1); id <= s.DB.nextID; id++ {
		if c, ok := s.DB.categories[id]; ok && c.HotelID == hotelID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s Categories) UpdatePrice(ctx context.Context, id uint64, price model.Cents) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	c, ok := s.DB.categories[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Price = price
	s.DB.categories[id] = c
	return nil
}

// Rooms implements service.RoomStore.
type Rooms struct{ DB *DB }

func (s Rooms) Create(ctx context.Context, hotelID, categoryID uint64, number string) (model.Room, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for _, r := range s.DB.rooms {
		if r.HotelID == hotelID && r.Number == number {
			return model.Room{}, repository.ErrConflict
		}
	}
	c := s.DB.categories[categoryID]
	r := model.Room{ID: s.DB.id(), HotelID: hotelID, CategoryID: categoryID, Category: c.Name, Price: c.Price, Number: number, IsAvailable: true}
	s.DB.rooms[r.ID] = r
	return r, nil
}

func (s Rooms) ListByHotel(ctx context.Context, hotelID uint64, onlyAvailable bool) ([]model.Room, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	out := []model.Room{}
	for id := uint64(1); id <= s.DB.nextID; id++ {
		r, ok := s.DB.rooms[id]
		if !ok || r.HotelID != hotelID || (onlyAvailable && !r.IsAvailable) {
			continue
		}
		c := s.DB.categories[r.CategoryID]
		r.Category, r.Price = c.Name, c.Price
		out = append(out, r)
	}
	return out, nil
}

// ---- reviews and finance ----

// Reviews implements service.ReviewStore.
type Reviews struct{ DB *DB }

func (s Reviews) Create(ctx context.Context, clientID, hotelID uint64, text string) (model.Review, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	r := model.Review{ID: s.DB.id(), ClientID: clientID, HotelID: hotelID, Text: text, CreatedAt: time.Now().UTC()}
	s.DB.reviews[r.ID] = r
	return r, nil
}

func (s Reviews) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	r, ok := s.DB.reviews[id]
	if !ok {
		return model.Review{}, repository.ErrNotFound
	}
	return r, nil
}

func (s Reviews) ListByHotel(ctx context.Context, hotelID uint64) ([]model.Review, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	out := []model.Review{}
	for id := s.DB.nextID; id > 0; id-- {
		if r, ok := s.DB.reviews[id]; ok && r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s Reviews) Respond(ctx context.Context, id uint64, response string, at time.Time) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	r, ok := s.DB.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Response, r.RespondedAt = &response, &at
	s.DB.reviews[id] = r
	return nil
}

// Finance implements service.FinanceStore.
type Finance struct{ DB *DB }

func (s Finance) Create(ctx context.Context, hotelID uint64, roomsPaid int, earned model.Cents) (model.FinanceReport, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	r := model.FinanceReport{ID: s.DB.id(), HotelID: hotelID, RoomsPaid: roomsPaid, MoneyEarned: earned, CreatedAt: time.Now().UTC()}
	s.DB.reports[r.ID] = r
	return r, nil
}

func (s Finance) filter(keep func(model.FinanceReport) bool) []model.FinanceReport {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	out := []model.FinanceReport{}
	for id := s.DB.nextID; id > 0; id-- {
		if r, ok := s.DB.reports[id]; ok && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s Finance) ListAll(ctx context.Context) ([]model.FinanceReport, error) {
	return s.filter(func(model.FinanceReport) bool { return true }), nil
}

func (s Finance) ListByAdmin(ctx context.Context, adminID uint64) ([]model.FinanceReport, error) {
	s.DB.mu.Lock()
	owned := map[uint64]bool{}
	for _, h := range s.DB.hotels {
		if h.AdminID == adminID {
			owned[h.ID] = true
		}
	}
	s.DB.mu.Unlock()
	return s.filter(func(r model.FinanceReport) bool { return owned[r.HotelID] }), nil
}

func (s Finance) ListByHotel(ctx context.Context, hotelID uint64) ([]model.FinanceReport, error) {
	return s.filter(func(r model.FinanceReport) bool { return r.HotelID == hotelID }), nil
}

// ---- accounts ----

// Users implements service.UserStore.
type Users struct{ DB *DB }

func (s Users) Create(ctx context.Context, u repository.NewUser, cost int) (uint64, error) {
	hash, err := utils.HashPassword(u.Password, cost)
	if err != nil {
		return 0, err
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for _, existing := range s.DB.users {
		if existing.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	now := time.Now().UTC()
	row := model.User{ID: s.DB.id(), Email: email, FirstName: u.FirstName, LastName: u.LastName,
		PasswordHash: hash, Role: u.Role, IsActive: true, IsVerified: u.Verified, CreatedAt: now, UpdatedAt: now}
	s.DB.users[row.ID] = row
	return row.ID, nil
}

func (s Users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for _, u := range s.DB.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s Users) GetByID(ctx context.Context, id uint64) (model.User, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	u, ok := s.DB.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s Users) MarkVerified(ctx context.Context, id uint64) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	u, ok := s.DB.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	s.DB.users[id] = u
	return nil
}

func (s Users) SetPassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	u, ok := s.DB.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	s.DB.users[id] = u
	return nil
}

func (s Users) EnsureSystemAdmin(ctx context.Context, email, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for id, u := range s.DB.users {
		if u.Email == email {
			u.PasswordHash, u.Role, u.IsVerified = hash, model.RoleSystemAdmin, true
			s.DB.users[id] = u
			return nil
		}
	}
	u := model.User{ID: s.DB.id(), Email: email, PasswordHash: hash, Role: model.RoleSystemAdmin, IsActive: true, IsVerified: true}
	s.DB.users[u.ID] = u
	return nil
}

// OTPs implements service.OTPStore.
type OTPs struct{ DB *DB }

func (s OTPs) Upsert(ctx context.Context, userID uint64, code string, exp time.Time) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	s.DB.otps[userID] = model.OneTimePassword{UserID: userID, Code: code, ExpiresAt: exp}
	return nil
}

func (s OTPs) Get(ctx context.Context, userID uint64) (model.OneTimePassword, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	o, ok := s.DB.otps[userID]
	if !ok {
		return model.OneTimePassword{}, repository.ErrNotFound
	}
	return o, nil
}

func (s OTPs) Delete(ctx context.Context, userID uint64) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	delete(s.DB.otps, userID)
	return nil
}

// Resets implements service.PasswordResetStore.
type Resets struct{ DB *DB }

func (s Resets) Replace(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	s.DB.resets[userID] = reset{hash: hash, exp: exp}
	return nil
}

func (s Resets) Consume(ctx context.Context, hash string, now time.Time) (uint64, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for userID, r := range s.DB.resets {
		if r.hash != hash {
			continue
		}
		delete(s.DB.resets, userID)
		if now.After(r.exp) {
			return 0, repository.ErrNotFound
		}
		return userID, nil
	}
	return 0, repository.ErrNotFound
}

// Tokens implements the auth handler's refresh token store.
type Tokens struct{ DB *DB }

func (s Tokens) StoreRefresh(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	s.DB.tokens[hash] = token{userID: userID, exp: exp}
	return nil
}

func (s Tokens) ValidateRefresh(ctx context.Context, hash string) (uint64, error) {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	t, ok := s.DB.tokens[hash]
	if !ok || t.revoked || time.Now().UTC().After(t.exp) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (s Tokens) RevokeByHash(ctx context.Context, hash string) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	if t, ok := s.DB.tokens[hash]; ok {
		t.revoked = true
		s.DB.tokens[hash] = t
	}
	return nil
}

func (s Tokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	s.DB.mu.Lock()
	defer s.DB.mu.Unlock()
	for h, t := range s.DB.tokens {
		if t.userID == userID {
			t.revoked = true
			s.DB.tokens[h] = t
		}
	}
	return nil
}

// Notifier records notifications instead of publishing them.  Err, when
// set, is returned from every call.
type Notifier struct {
	mu     sync.Mutex
	Err    error
	Emails []Email
	Events []model.Booking
}

// Email is one recorded SendEmail call.
type Email struct{ To, Subject, Body string }

func (n *Notifier) SendEmail(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Emails = append(n.Emails, Email{To: to, Subject: subject, Body: body})
	return n.Err
}

func (n *Notifier) BookingChanged(ctx context.Context, b model.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, b)
	return n.Err
}

// LastEmail returns the most recent email, if any.
func (n *Notifier) LastEmail() (Email, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Emails) == 0 {
		return Email{}, false
	}
	return n.Emails[len(n.Emails)-1], true
}

// EventCount returns the number of recorded booking events.
func (n *Notifier) EventCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Events)
}
