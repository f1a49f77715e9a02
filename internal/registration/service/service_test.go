package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"trilha/internal/registration/models"
	"trilha/internal/registration/store"
	dErrors "trilha/pkg/domain-errors"
)

type IntakeServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	service *Service
}

func TestIntakeServiceSuite(t *testing.T) {
	suite.Run(t, new(IntakeServiceSuite))
}

func (s *IntakeServiceSuite) SetupTest() {
	s.store = store.NewInMemory(80)
	s.service = New(s.store)
}

func candidate() models.SubmitRequest {
	return models.SubmitRequest{
		Nome:           "Ana Silva",
		Whatsapp:       "81999998888",
		Email:          "ana@gmail.com",
		EmergenciaNome: "Zeca",
		EmergenciaTel:  "81988887777",
		TermoImagem:    true,
	}
}

func (s *IntakeServiceSuite) count() int {
	count, err := s.store.Count(context.Background())
	s.Require().NoError(err)
	return count
}

func (s *IntakeServiceSuite) TestSubmitAgainstEmptyStore() {
	reg, err := s.service.Submit(context.Background(), candidate())
	s.Require().NoError(err)
	s.NotZero(reg.ID)
	s.Equal("ana@gmail.com", reg.Email)
	s.Equal("81999998888", reg.Whatsapp)
	s.Equal(1, s.count())
}

func (s *IntakeServiceSuite) TestSubmitNormalizesBeforeStoring() {
	req := candidate()
	req.Email = " Ana@GMAIL.com "
	req.Whatsapp = "(81) 99999-8888"
	req.EmergenciaTel = "(81) 98888-7777"

	reg, err := s.service.Submit(context.Background(), req)
	s.Require().NoError(err)
	s.Equal("ana@gmail.com", reg.Email)
	s.Equal("81999998888", reg.Whatsapp)
	s.Equal("81988887777", reg.EmergenciaTel)
}

func (s *IntakeServiceSuite) TestSubmitRejectsInvalidFieldsWithoutStoreAccess() {
	tests := []struct {
		name   string
		mutate func(r *models.SubmitRequest)
		field  string
	}{
		{"short name", func(r *models.SubmitRequest) { r.Nome = "Al" }, "nome"},
		{"bad phone", func(r *models.SubmitRequest) { r.Whatsapp = "999" }, "whatsapp"},
		{"bad email domain", func(r *models.SubmitRequest) { r.Email = "ana@empresa.com" }, "email"},
		{"term refused", func(r *models.SubmitRequest) { r.TermoImagem = false }, "termoImagem"},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			req := candidate()
			tc.mutate(&req)
			_, err := s.service.Submit(context.Background(), req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Contains(dErrors.GetFields(err), tc.field)
			s.Equal(0, s.count(), "a rejected candidate must not touch the store")
		})
	}
}

func (s *IntakeServiceSuite) TestDuplicateDecisionTable() {
	ctx := context.Background()
	_, err := s.service.Submit(ctx, candidate())
	s.Require().NoError(err)

	s.Run("email and phone both match", func() {
		_, err := s.service.Submit(ctx, candidate())
		s.requireConflict(err, MsgAlreadyRegistered)
	})

	s.Run("only email matches", func() {
		req := candidate()
		req.Whatsapp = "81911112222"
		req.EmergenciaTel = "81911113333"
		_, err := s.service.Submit(ctx, req)
		s.requireConflict(err, MsgEmailInUse)
	})

	s.Run("only phone matches", func() {
		req := candidate()
		req.Email = "outra@gmail.com"
		_, err := s.service.Submit(ctx, req)
		s.requireConflict(err, MsgPhoneInUse)
	})

	s.Equal(1, s.count(), "no rejection may insert a row")
}

func (s *IntakeServiceSuite) TestSecondSubmissionSameEmailDifferentPhone() {
	ctx := context.Background()
	_, err := s.service.Submit(ctx, candidate())
	s.Require().NoError(err)

	req := candidate()
	req.Whatsapp = "81900001111"
	_, err = s.service.Submit(ctx, req)
	s.requireConflict(err, MsgEmailInUse)

	existing, err := s.store.FindConflict(ctx, "ana@gmail.com", "", 0)
	s.Require().NoError(err)
	s.Require().NotNil(existing)
	s.Equal(1, s.count(), "store must still hold exactly one row for that email")
}

func (s *IntakeServiceSuite) TestCapacityReached() {
	ctx := context.Background()
	full := store.NewInMemory(1)
	svc := New(full)

	_, err := svc.Submit(ctx, candidate())
	s.Require().NoError(err)

	req := candidate()
	req.Email = "outra@gmail.com"
	req.Whatsapp = "81911112222"
	_, err = svc.Submit(ctx, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), MsgNoSpotsLeft)
}

func (s *IntakeServiceSuite) TestStoreFailureSurfacesAsInternal() {
	svc := New(failingStore{})
	_, err := svc.Submit(context.Background(), candidate())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *IntakeServiceSuite) requireConflict(err error, msg string) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "expected conflict, got %v", err)
	s.Contains(err.Error(), msg)
}

// failingStore simulates an unavailable backing store.
type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) Create(context.Context, *models.Registration) error { return errStoreDown }
func (failingStore) FindConflict(context.Context, string, string, int64) (*models.Registration, error) {
	return nil, errStoreDown
}
func (failingStore) FindByID(context.Context, int64) (*models.Registration, error) {
	return nil, errStoreDown
}
func (failingStore) List(context.Context) ([]*models.Registration, error) { return nil, errStoreDown }
func (failingStore) Update(context.Context, *models.Registration) error  { return errStoreDown }
func (failingStore) Delete(context.Context, int64) error                 { return errStoreDown }
func (failingStore) Count(context.Context) (int, error)                  { return 0, errStoreDown }
