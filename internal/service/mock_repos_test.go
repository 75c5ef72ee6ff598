package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lauracabezas-star/aulatech-backend/config"
	"github.com/lauracabezas-star/aulatech-backend/internal/model"
	"github.com/lauracabezas-star/aulatech-backend/internal/repository"
	pkgerrors "github.com/lauracabezas-star/aulatech-backend/pkg/errors"
)

// ── 内存存储 ──
// 所有 Mock Repository 共享同一份数据，便于验证跨实体联动（报告 → 设备状态）

type mockStore struct {
	users        map[string]*model.User
	equipment    map[string]*model.Equipment
	reservations map[string]*model.Reservation
	reports      map[string]*model.Report

	seq   int64
	clock time.Time
	fail  error // 非 nil 时所有读写返回该错误
}

func newMockStore() *mockStore {
	return &mockStore{
		users:        make(map[string]*model.User),
		equipment:    make(map[string]*model.Equipment),
		reservations: make(map[string]*model.Reservation),
		reports:      make(map[string]*model.Report),
		clock:        time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%03d", prefix, s.seq)
}

// tick 模拟数据库 NOW()，每次调用递增 1 秒，保证 created_at 有序
func (s *mockStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func newMockRepository(store *mockStore) *repository.Repository {
	return &repository.Repository{
		User:        &mockUserRepo{store: store},
		Equipment:   &mockEquipmentRepo{store: store},
		Reservation: &mockReservationRepo{store: store},
		Report:      &mockReportRepo{store: store, ticketSeq: 0},
	}
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL: time.Hour,
			Issuer:         "aulatech",
			BcryptCost:     4,
		},
		Redis: config.RedisConfig{StatsTTL: 30 * time.Second},
	}
}

var nopLogger = zap.NewNop()

// ── Mock UserRepository ──

type mockUserRepo struct {
	store *mockStore
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	for _, u := range m.store.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uk_users_email"}
		}
	}
	if user.UserID == "" {
		user.UserID = m.store.nextID("user")
	}
	now := m.store.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	m.store.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	if u, ok := m.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	for _, u := range m.store.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	if _, ok := m.store.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.UpdatedAt = m.store.tick()
	cp := *user
	m.store.users[user.UserID] = &cp
	return nil
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	store *mockStore
}

func (m *mockEquipmentRepo) Create(_ context.Context, eq *model.Equipment) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	for _, e := range m.store.equipment {
		if e.SerialNumber == eq.SerialNumber {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uk_equipment_serial"}
		}
	}
	if eq.EquipmentID == "" {
		eq.EquipmentID = m.store.nextID("eq")
	}
	if eq.Version == 0 {
		eq.Version = 1
	}
	now := m.store.tick()
	eq.CreatedAt, eq.UpdatedAt = now, now
	cp := *eq
	m.store.equipment[eq.EquipmentID] = &cp
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (*model.Equipment, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	if e, ok := m.store.equipment[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Equipment, error) {
	return m.GetByID(ctx, id)
}

func (m *mockEquipmentRepo) List(_ context.Context, filter repository.EquipmentFilter) ([]model.Equipment, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	var result []model.Equipment
	for _, e := range m.store.equipment {
		if !e.IsActive {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Location != "" {
			if e.Location == nil || !strings.Contains(strings.ToLower(*e.Location), strings.ToLower(filter.Location)) {
				continue
			}
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockEquipmentRepo) Update(_ context.Context, eq *model.Equipment) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	stored, ok := m.store.equipment[eq.EquipmentID]
	if !ok || stored.Version != eq.Version {
		return pkgerrors.ErrOptimisticLock
	}
	for _, e := range m.store.equipment {
		if e.EquipmentID != eq.EquipmentID && e.SerialNumber == eq.SerialNumber {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uk_equipment_serial"}
		}
	}
	eq.Version++
	eq.UpdatedAt = m.store.tick()
	cp := *eq
	m.store.equipment[eq.EquipmentID] = &cp
	return nil
}

func (m *mockEquipmentRepo) UpdateStatus(_ context.Context, id string, status model.EquipmentStatus) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	e, ok := m.store.equipment[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Status = status
	e.Version++
	e.UpdatedAt = m.store.tick()
	return nil
}

// ── Mock ReservationRepository ──

type mockReservationRepo struct {
	store *mockStore
	// skipOverlapCheck 模拟并发窗口：应用层检查未发现冲突，由排他约束兜底
	skipOverlapCheck bool
}

func (m *mockReservationRepo) Create(_ context.Context, res *model.Reservation) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	// 模拟 ex_reservations_no_overlap 排他约束
	for _, r := range m.store.reservations {
		if r.EquipmentID == res.EquipmentID && r.Status == model.ReservationActive &&
			model.Overlaps(res.StartTime, res.EndTime, r.StartTime, r.EndTime) {
			return &pgconn.PgError{Code: "23P01", ConstraintName: "ex_reservations_no_overlap"}
		}
	}
	if res.ReservationID == "" {
		res.ReservationID = m.store.nextID("res")
	}
	now := m.store.tick()
	res.CreatedAt, res.UpdatedAt = now, now
	cp := *res
	cp.Equipment, cp.User = nil, nil
	m.store.reservations[res.ReservationID] = &cp
	return nil
}

func (m *mockReservationRepo) withRelations(r *model.Reservation) model.Reservation {
	cp := *r
	if e, ok := m.store.equipment[r.EquipmentID]; ok {
		eq := *e
		cp.Equipment = &eq
	}
	if u, ok := m.store.users[r.UserID]; ok {
		user := *u
		cp.User = &user
	}
	return cp
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	if r, ok := m.store.reservations[id]; ok {
		cp := m.withRelations(r)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) List(_ context.Context, filter repository.ReservationFilter) ([]model.Reservation, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	var result []model.Reservation
	for _, r := range m.store.reservations {
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.EquipmentID != "" && r.EquipmentID != filter.EquipmentID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, m.withRelations(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

func (m *mockReservationRepo) HasOverlap(_ context.Context, equipmentID string, start, end time.Time) (bool, error) {
	if m.store.fail != nil {
		return false, m.store.fail
	}
	if m.skipOverlapCheck {
		return false, nil
	}
	for _, r := range m.store.reservations {
		if r.EquipmentID == equipmentID && r.Status == model.ReservationActive &&
			model.Overlaps(start, end, r.StartTime, r.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReservationRepo) UpdateStatus(_ context.Context, id string, from, to model.ReservationStatus, cancelReason *string) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	r, ok := m.store.reservations[id]
	if !ok || r.Status != from {
		return gorm.ErrRecordNotFound
	}
	r.Status = to
	if cancelReason != nil {
		reason := *cancelReason
		r.CancelReason = &reason
	}
	r.UpdatedAt = m.store.tick()
	return nil
}

func (m *mockReservationRepo) CompleteExpired(_ context.Context, now time.Time) (int64, error) {
	if m.store.fail != nil {
		return 0, m.store.fail
	}
	var n int64
	for _, r := range m.store.reservations {
		if r.Status == model.ReservationActive && !r.EndTime.After(now) {
			r.Status = model.ReservationCompleted
			n++
		}
	}
	return n, nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	store     *mockStore
	ticketSeq int64
	// beforeUpdate 在读取与写入之间执行，用于模拟并发写入
	beforeUpdate func()
}

func (m *mockReportRepo) Create(_ context.Context, report *model.Report) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	for _, r := range m.store.reports {
		if r.TicketNumber == report.TicketNumber {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uk_reports_ticket"}
		}
	}
	if report.ReportID == "" {
		report.ReportID = m.store.nextID("rep")
	}
	now := m.store.tick()
	report.CreatedAt, report.UpdatedAt = now, now
	cp := *report
	cp.Equipment, cp.User, cp.AssignedTo = nil, nil, nil
	m.store.reports[report.ReportID] = &cp
	return nil
}

func (m *mockReportRepo) withRelations(r *model.Report) model.Report {
	cp := *r
	if e, ok := m.store.equipment[r.EquipmentID]; ok {
		eq := *e
		cp.Equipment = &eq
	}
	if u, ok := m.store.users[r.UserID]; ok {
		user := *u
		cp.User = &user
	}
	if r.AssignedToID != nil {
		if u, ok := m.store.users[*r.AssignedToID]; ok {
			user := *u
			cp.AssignedTo = &user
		}
	}
	return cp
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	if r, ok := m.store.reports[id]; ok {
		cp := m.withRelations(r)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Report, error) {
	report, err := m.GetByID(ctx, id)
	if err == nil && m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	return report, err
}

func (m *mockReportRepo) ListTriage(_ context.Context, filter repository.ReportFilter) ([]model.Report, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	var result []model.Report
	for _, r := range m.store.reports {
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.EquipmentID != "" && r.EquipmentID != filter.EquipmentID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && r.Priority != filter.Priority {
			continue
		}
		result = append(result, m.withRelations(r))
	}
	sort.Slice(result, func(i, j int) bool {
		if ri, rj := result[i].Priority.Rank(), result[j].Priority.Rank(); ri != rj {
			return ri > rj
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockReportRepo) ListByUser(_ context.Context, userID string, status model.ReportStatus) ([]model.Report, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	var result []model.Report
	for _, r := range m.store.reports {
		if r.UserID != userID || (status != "" && r.Status != status) {
			continue
		}
		result = append(result, m.withRelations(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockReportRepo) Update(_ context.Context, report *model.Report, from model.ReportStatus) error {
	if m.store.fail != nil {
		return m.store.fail
	}
	stored, ok := m.store.reports[report.ReportID]
	if !ok || stored.Status != from {
		return gorm.ErrRecordNotFound
	}
	// ticket_number 只允许创建时写入
	stored.Status = report.Status
	stored.AssignedToID = report.AssignedToID
	stored.Resolution = report.Resolution
	stored.ResolvedAt = report.ResolvedAt
	stored.UpdatedAt = m.store.tick()
	return nil
}

func (m *mockReportRepo) NextTicketSeq(_ context.Context) (int64, error) {
	if m.store.fail != nil {
		return 0, m.store.fail
	}
	m.ticketSeq++
	return m.ticketSeq, nil
}

func (m *mockReportRepo) Stats(_ context.Context) (*model.ReportStats, error) {
	if m.store.fail != nil {
		return nil, m.store.fail
	}
	stats := &model.ReportStats{ByPriority: map[string]int64{"low": 0, "medium": 0, "high": 0, "urgent": 0}}
	for _, r := range m.store.reports {
		stats.Total++
		stats.ByPriority[string(r.Priority)]++
		switch r.Status {
		case model.ReportPending:
			stats.Pending++
		case model.ReportInProgress:
			stats.InProgress++
		case model.ReportResolved:
			stats.Resolved++
		case model.ReportClosed:
			stats.Closed++
		}
	}
	return stats, nil
}

// ── 种子数据 ──

func seedUser(store *mockStore, id string, role model.Role) *model.User {
	u := &model.User{
		UserID:    id,
		Email:     id + "@uni.edu",
		FirstName: "Test",
		LastName:  strings.ToUpper(id),
		Role:      role,
		IsActive:  true,
	}
	u.CreatedAt = store.tick()
	store.users[id] = u
	return u
}

func seedEquipment(store *mockStore, id string, status model.EquipmentStatus) *model.Equipment {
	loc := "Bloque A - 101"
	e := &model.Equipment{
		EquipmentID:  id,
		Name:         "Proyector " + id,
		Type:         model.EquipmentProjector,
		SerialNumber: "SN-" + id,
		Location:     &loc,
		Status:       status,
		IsActive:     true,
	}
	e.Version = 1
	e.CreatedAt = store.tick()
	store.equipment[id] = e
	return e
}
