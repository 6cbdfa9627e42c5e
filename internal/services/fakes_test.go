package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ordem-servico/internal/authz"
	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/contextkeys"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/eventbus"
	"ordem-servico/pkg/types"

	"github.com/jackc/pgx/v5"
)

func userContext(userID uint64, role string) context.Context {
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, userID)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
	return context.WithValue(ctx, contextkeys.UserPermissionsMapKey, authz.NewContext(role).Permissions)
}

type fakeTx struct{ calls int }

func (f *fakeTx) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

// ---- cache ----

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	fmt.Sscan(c.data[key], &n)
	n++
	c.data[key] = fmt.Sprint(n)
	return n, nil
}

func (c *fakeCache) Expire(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (c *fakeCache) TTL(context.Context, string) (time.Duration, error)          { return time.Minute, nil }

// ---- settings ----

type fakeSettingRepo struct {
	items map[string]entities.Setting
	reads int
}

func newFakeSettingRepo(values map[string]string) *fakeSettingRepo {
	r := &fakeSettingRepo{items: map[string]entities.Setting{}}
	for k, v := range values {
		r.items[k] = entities.Setting{Key: k, Value: v, Type: entities.SettingTypeString}
	}
	return r
}

func (r *fakeSettingRepo) sorted(public bool) []entities.Setting {
	out := make([]entities.Setting, 0, len(r.items))
	for _, s := range r.items {
		if !public || s.IsPublic {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *fakeSettingRepo) GetAll(context.Context) ([]entities.Setting, error) { return r.sorted(false), nil }
func (r *fakeSettingRepo) GetPublic(context.Context) ([]entities.Setting, error) {
	return r.sorted(true), nil
}

func (r *fakeSettingRepo) FindByKey(_ context.Context, key string) (*entities.Setting, error) {
	r.reads++
	s, ok := r.items[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSettingRepo) Upsert(_ context.Context, s entities.Setting) (*entities.Setting, error) {
	r.items[s.Key] = s
	return &s, nil
}

func (r *fakeSettingRepo) SeedDefaults(_ context.Context, defaults []entities.Setting) (int64, error) {
	var inserted int64
	for _, s := range defaults {
		if _, ok := r.items[s.Key]; ok {
			continue
		}
		r.items[s.Key] = s
		inserted++
	}
	return inserted, nil
}

// ---- audit ----

type auditCall struct {
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
}

type fakeAudit struct {
	mu    sync.Mutex
	calls []auditCall
}

func (f *fakeAudit) Record(context.Context, dto.CreateAuditLogDTO) error { return nil }

func (f *fakeAudit) Log(_ context.Context, _ pgx.Tx, action, resource, resourceID string, details map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, auditCall{Action: action, Resource: resource, ResourceID: resourceID, Details: details})
}

func (f *fakeAudit) List(context.Context, int) ([]entities.AuditLog, error) { return nil, nil }
func (f *fakeAudit) ByResource(context.Context, string, string) ([]entities.AuditLog, error) {
	return nil, nil
}

// ---- events ----

type fakeBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *fakeBus) Publish(_ context.Context, e eventbus.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

// ---- history ----

type fakeHistoryRepo struct {
	items []entities.OrderHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, _ pgx.Tx, item dto.CreateHistoryDTO) (*entities.OrderHistory, error) {
	h := entities.OrderHistory{
		ID:             uint64(len(r.items) + 1),
		OrderID:        item.OrderID,
		PreviousStatus: item.PreviousStatus,
		NewStatus:      item.NewStatus,
		ActionType:     item.ActionType,
		Comments:       item.Comments,
		WaMsgSent:      item.WaMsgSent,
		WaMsgContent:   item.WaMsgContent,
		UserID:         item.UserID,
		CreatedAt:      time.Now(),
	}
	r.items = append(r.items, h)
	return &h, nil
}

func (r *fakeHistoryRepo) FindByOrderID(_ context.Context, _ pgx.Tx, orderID uint64) ([]entities.OrderHistory, error) {
	var out []entities.OrderHistory
	for _, h := range r.items {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

// ---- orders ----

type fakeOrderRepo struct {
	orders   map[uint64]*entities.Order
	parts    map[uint64]*entities.OrderPart
	photos   []entities.OrderPhoto
	sequence int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uint64]*entities.Order{}, parts: map[uint64]*entities.OrderPart{}}
}

func (r *fakeOrderRepo) put(o entities.Order) {
	r.orders[o.ID] = &o
}

func (r *fakeOrderRepo) NextProtocol(_ context.Context, _ pgx.Tx, now time.Time) (string, error) {
	return repositories.FormatProtocol(now, r.sequence+1), nil
}

func (r *fakeOrderRepo) Create(_ context.Context, _ pgx.Tx, o *entities.Order) (uint64, error) {
	r.sequence++
	id := uint64(len(r.orders) + 1)
	copied := *o
	copied.ID = id
	r.orders[id] = &copied
	return id, nil
}

func (r *fakeOrderRepo) GetAll(context.Context, types.Filter) ([]entities.Order, uint64, error) {
	out := make([]entities.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.Order, error) {
	o, ok := r.orders[id]
	if !ok || o.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *fakeOrderRepo) FindByProtocol(_ context.Context, protocol string) (*entities.Order, error) {
	for _, o := range r.orders {
		if o.Protocol == protocol && o.DeletedAt == nil {
			copied := *o
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeOrderRepo) Update(_ context.Context, _ pgx.Tx, o *entities.Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status statusflow.Status, exitDate *time.Time) error {
	o, ok := r.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	o.Status = status
	if exitDate != nil {
		o.ExitDate = exitDate
	}
	return nil
}

func (r *fakeOrderRepo) SoftDelete(_ context.Context, id uint64) error {
	o, ok := r.orders[id]
	if !ok || o.DeletedAt != nil {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	o.DeletedAt = &now
	return nil
}

func (r *fakeOrderRepo) GetByClient(_ context.Context, clientID uint64) ([]entities.Order, error) {
	var out []entities.Order
	for _, o := range r.orders {
		if o.ClientID == clientID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetActive(context.Context) ([]entities.Order, error) {
	var out []entities.Order
	for _, o := range r.orders {
		if !statusflow.IsTerminal(o.Status) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListParts(_ context.Context, _ pgx.Tx, orderID uint64) ([]entities.OrderPart, error) {
	var out []entities.OrderPart
	for _, p := range r.parts {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) AddPart(_ context.Context, _ pgx.Tx, part *entities.OrderPart) (*entities.OrderPart, error) {
	copied := *part
	copied.ID = uint64(len(r.parts) + 1)
	r.parts[copied.ID] = &copied
	out := copied
	return &out, nil
}

func (r *fakeOrderRepo) FindPart(_ context.Context, _ pgx.Tx, orderID, partID uint64) (*entities.OrderPart, error) {
	p, ok := r.parts[partID]
	if !ok || p.OrderID != orderID {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeOrderRepo) DeletePart(_ context.Context, _ pgx.Tx, orderID, partID uint64) error {
	p, ok := r.parts[partID]
	if !ok || p.OrderID != orderID {
		return apperrors.ErrNotFound
	}
	delete(r.parts, partID)
	return nil
}

func (r *fakeOrderRepo) AddPhoto(_ context.Context, photo *entities.OrderPhoto) (*entities.OrderPhoto, error) {
	copied := *photo
	copied.ID = uint64(len(r.photos) + 1)
	r.photos = append(r.photos, copied)
	return &copied, nil
}

func (r *fakeOrderRepo) ListPhotos(_ context.Context, orderID uint64) ([]entities.OrderPhoto, error) {
	var out []entities.OrderPhoto
	for _, p := range r.photos {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

// ---- products ----

type fakeProductRepo struct {
	products  map[uint64]*entities.Product
	movements []entities.StockMovement
}

func newFakeProductRepo(products ...entities.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[uint64]*entities.Product{}}
	for i := range products {
		p := products[i]
		r.products[p.ID] = &p
	}
	return r
}

func (r *fakeProductRepo) GetAll(context.Context, types.Filter) ([]entities.Product, uint64, error) {
	out := make([]entities.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Produto não encontrado")
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Product, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *fakeProductRepo) FindByBarcode(_ context.Context, barcode string) (*entities.Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFoundError("Produto não encontrado")
}

func (r *fakeProductRepo) GetLowStock(context.Context) ([]entities.Product, error) {
	var out []entities.Product
	for _, p := range r.products {
		if p.IsLowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) CountLowStock(ctx context.Context) (int64, error) {
	low, _ := r.GetLowStock(ctx)
	return int64(len(low)), nil
}

func (r *fakeProductRepo) Create(_ context.Context, _ pgx.Tx, p *entities.Product) (*entities.Product, error) {
	copied := *p
	copied.ID = uint64(len(r.products) + 1)
	r.products[copied.ID] = &copied
	out := copied
	return &out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entities.Product) (*entities.Product, error) {
	copied := *p
	r.products[p.ID] = &copied
	return p, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uint64) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) SetQuantity(_ context.Context, _ pgx.Tx, id uint64, quantity int) error {
	if quantity < 0 {
		return apperrors.ErrInsufficientStock
	}
	r.products[id].Quantity = quantity
	return nil
}

func (r *fakeProductRepo) CreateMovement(_ context.Context, _ pgx.Tx, m *entities.StockMovement) (*entities.StockMovement, error) {
	copied := *m
	copied.ID = uint64(len(r.movements) + 1)
	r.movements = append(r.movements, copied)
	return &copied, nil
}

func (r *fakeProductRepo) ListMovements(_ context.Context, productID uint64, _ uint64) ([]entities.StockMovement, error) {
	var out []entities.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ---- clients ----

type fakeClientRepo struct {
	clients map[uint64]*entities.Client
}

func newFakeClientRepo(clients ...entities.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: map[uint64]*entities.Client{}}
	for i := range clients {
		c := clients[i]
		r.clients[c.ID] = &c
	}
	return r
}

func (r *fakeClientRepo) GetAll(context.Context, types.Filter) ([]entities.Client, uint64, error) {
	out := make([]entities.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeClientRepo) FindByID(_ context.Context, id uint64, withDeleted bool) (*entities.Client, error) {
	c, ok := r.clients[id]
	if !ok || (c.DeletedAt != nil && !withDeleted) {
		return nil, apperrors.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeClientRepo) DocumentExists(_ context.Context, document string, exceptID uint64) (bool, error) {
	for _, c := range r.clients {
		if c.ID != exceptID && c.CPFCNPJ != nil && *c.CPFCNPJ == document {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeClientRepo) Create(_ context.Context, _ pgx.Tx, c *entities.Client) (uint64, error) {
	copied := *c
	copied.ID = uint64(len(r.clients) + 1)
	r.clients[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakeClientRepo) Update(_ context.Context, c *entities.Client) error {
	copied := *c
	r.clients[c.ID] = &copied
	return nil
}

func (r *fakeClientRepo) SoftDelete(_ context.Context, id uint64) error {
	c, ok := r.clients[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

func (r *fakeClientRepo) Reactivate(_ context.Context, id uint64) error {
	c, ok := r.clients[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.DeletedAt = nil
	return nil
}

func (r *fakeClientRepo) ListContacts(_ context.Context, clientID uint64) ([]entities.ClientContact, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, nil
	}
	return c.Contacts, nil
}

func (r *fakeClientRepo) FindContact(_ context.Context, clientID, contactID uint64) (*entities.ClientContact, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	for _, ct := range c.Contacts {
		if ct.ID == contactID {
			copied := ct
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeClientRepo) CreateContact(_ context.Context, _ pgx.Tx, ct *entities.ClientContact) (*entities.ClientContact, error) {
	c := r.clients[ct.ClientID]
	copied := *ct
	copied.ID = uint64(len(c.Contacts) + 1)
	c.Contacts = append(c.Contacts, copied)
	return &copied, nil
}

func (r *fakeClientRepo) UpdateContact(_ context.Context, _ pgx.Tx, ct *entities.ClientContact) (*entities.ClientContact, error) {
	c := r.clients[ct.ClientID]
	for i := range c.Contacts {
		if c.Contacts[i].ID == ct.ID {
			c.Contacts[i] = *ct
			return ct, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeClientRepo) DeleteContact(_ context.Context, clientID, contactID uint64) error {
	c, ok := r.clients[clientID]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range c.Contacts {
		if c.Contacts[i].ID == contactID {
			c.Contacts = append(c.Contacts[:i], c.Contacts[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeClientRepo) ClearPrincipal(_ context.Context, _ pgx.Tx, clientID uint64, tipo string, exceptID uint64) error {
	c := r.clients[clientID]
	for i := range c.Contacts {
		if c.Contacts[i].Tipo == tipo && c.Contacts[i].ID != exceptID {
			c.Contacts[i].Principal = false
		}
	}
	return nil
}

// ---- whatsapp ----

type sentMessage struct {
	Number string
	Text   string
}

type fakeNotifier struct {
	mu       sync.Mutex
	disabled bool
	err      error
	sent     []sentMessage
}

func (n *fakeNotifier) Notify(_ context.Context, number, text string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disabled {
		return false, nil
	}
	if n.err != nil {
		return false, n.err
	}
	n.sent = append(n.sent, sentMessage{Number: number, Text: text})
	return true, nil
}

func (n *fakeNotifier) Config(context.Context) dto.WhatsAppConfigDTO { return dto.WhatsAppConfigDTO{} }
func (n *fakeNotifier) Status(context.Context) (*dto.WhatsAppStatusDTO, error) {
	return &dto.WhatsAppStatusDTO{}, nil
}
func (n *fakeNotifier) QRCode(context.Context) (string, error) { return "", nil }
func (n *fakeNotifier) CreateInstance(context.Context, dto.CreateInstanceDTO) dto.CreateInstanceResultDTO {
	return dto.CreateInstanceResultDTO{}
}
func (n *fakeNotifier) Disconnect(context.Context) error { return nil }
func (n *fakeNotifier) SendTest(context.Context, string) dto.SendResultDTO {
	return dto.SendResultDTO{}
}
