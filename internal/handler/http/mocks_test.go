package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/stretchr/testify/mock"
	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"
	"github.com/vasiliy-maslov/equipment-reservations/internal/reservation"
	"github.com/vasiliy-maslov/equipment-reservations/internal/stats"
	"github.com/vasiliy-maslov/equipment-reservations/internal/user"

	handler "github.com/vasiliy-maslov/equipment-reservations/internal/handler/http"
)

type MockEquipmentService struct {
	mock.Mock
}

func (m *MockEquipmentService) CreateEquipment(ctx context.Context, e *equipment.Equipment) (*equipment.Equipment, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*equipment.Equipment), args.Error(1)
}

func (m *MockEquipmentService) GetEquipmentByID(ctx context.Context, id int64) (*equipment.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*equipment.Equipment), args.Error(1)
}

func (m *MockEquipmentService) ListEquipment(ctx context.Context) ([]equipment.Equipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]equipment.Equipment), args.Error(1)
}

func (m *MockEquipmentService) UpdateEquipment(ctx context.Context, e *equipment.Equipment) (*equipment.Equipment, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*equipment.Equipment), args.Error(1)
}

func (m *MockEquipmentService) DeleteEquipment(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) ListReservations(ctx context.Context, filter reservation.Filter) ([]reservation.Reservation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) GetReservation(ctx context.Context, id int64) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) CreateReservation(ctx context.Context, draft reservation.Draft) (*reservation.Reservation, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) UpdateReservation(ctx context.Context, id int64, draft reservation.Draft) (*reservation.Reservation, error) {
	args := m.Called(ctx, id, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) DeleteReservation(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Report(ctx context.Context, q stats.Query) (*stats.Report, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.Report), args.Error(1)
}

type testServer struct {
	equipment    *MockEquipmentService
	users        *MockUserService
	reservations *MockReservationService
	stats        *MockStatsService
	router       http.Handler
}

func newTestServer(staticDir string) *testServer {
	s := &testServer{
		equipment:    new(MockEquipmentService),
		users:        new(MockUserService),
		reservations: new(MockReservationService),
		stats:        new(MockStatsService),
	}
	s.router = handler.NewRouter(handler.Handlers{
		Equipment:    handler.NewEquipmentHandler(s.equipment),
		Users:        handler.NewUserHandler(s.users),
		Reservations: handler.NewReservationHandler(s.reservations),
		Stats:        handler.NewStatsHandler(s.stats),
	}, staticDir)
	return s
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}
