package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"trilha/internal/admin/session"
	"trilha/internal/registration/models"
	registration "trilha/internal/registration/service"
	"trilha/internal/registration/store"
	dErrors "trilha/pkg/domain-errors"
)

const passphrase = "85113257"

type AdminServiceSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	sessions *session.Manager
	service  *Service
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.MinCost)
	s.Require().NoError(err)

	s.store = store.NewInMemory(80)
	s.sessions = session.NewManager("test-key", 30*time.Minute, session.NewInMemoryRevocationList())
	s.service = New(s.store, s.sessions, string(hash))
}

func (s *AdminServiceSuite) seed(n int) *models.Registration {
	reg := &models.Registration{
		Nome:           fmt.Sprintf("Participante %02d", n),
		Email:          fmt.Sprintf("participante%02d@gmail.com", n),
		Whatsapp:       fmt.Sprintf("819%08d", n),
		EmergenciaNome: "Contato",
		EmergenciaTel:  fmt.Sprintf("818%08d", n),
		TermoImagem:    true,
	}
	s.Require().NoError(s.store.Create(context.Background(), reg))
	return reg
}

func editRequest(reg *models.Registration) models.SubmitRequest {
	return models.SubmitRequest{
		Nome:           reg.Nome,
		Email:          reg.Email,
		Whatsapp:       reg.Whatsapp,
		EmergenciaNome: reg.EmergenciaNome,
		EmergenciaTel:  reg.EmergenciaTel,
		TermoImagem:    reg.TermoImagem,
	}
}

func (s *AdminServiceSuite) TestLogin() {
	ctx := context.Background()

	s.Run("correct passphrase issues a session token", func() {
		token, err := s.service.Login(ctx, passphrase)
		s.Require().NoError(err)
		s.NotEmpty(token.Value)
		s.Require().NoError(s.sessions.Validate(ctx, token.Value))
	})

	s.Run("wrong passphrase is unauthorized", func() {
		_, err := s.service.Login(ctx, "wrong")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *AdminServiceSuite) TestLogoutRevokesSession() {
	ctx := context.Background()
	token, err := s.service.Login(ctx, passphrase)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(ctx, token.Value))
	s.Error(s.sessions.Validate(ctx, token.Value))
}

func (s *AdminServiceSuite) TestListNewestFirst() {
	ctx := context.Background()
	s.seed(1)
	time.Sleep(time.Millisecond)
	s.seed(2)

	records, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("participante02@gmail.com", records[0].Email)
}

func (s *AdminServiceSuite) TestUpdateRunsIntakeValidation() {
	ctx := context.Background()
	reg := s.seed(1)

	req := editRequest(reg)
	req.Email = "invalido"
	_, err := s.service.Update(ctx, reg.ID, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(dErrors.GetFields(err), "email")
}

func (s *AdminServiceSuite) TestUpdateExcludesOwnRecordFromConflictSearch() {
	ctx := context.Background()
	reg := s.seed(1)

	// Editing only the name must not trip over the record's own email/phone.
	req := editRequest(reg)
	req.Nome = "Nome Corrigido"
	updated, err := s.service.Update(ctx, reg.ID, req)
	s.Require().NoError(err)
	s.Equal("Nome Corrigido", updated.Nome)
	s.True(updated.CreatedAt.Equal(reg.CreatedAt))
}

func (s *AdminServiceSuite) TestUpdateCannotReintroduceDuplicates() {
	ctx := context.Background()
	first := s.seed(1)
	second := s.seed(2)

	s.Run("stealing another record's email", func() {
		req := editRequest(second)
		req.Email = first.Email
		_, err := s.service.Update(ctx, second.ID, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), registration.MsgEmailInUse)
	})

	s.Run("stealing another record's phone", func() {
		req := editRequest(second)
		req.Whatsapp = first.Whatsapp
		_, err := s.service.Update(ctx, second.ID, req)
		s.Require().Error(err)
		s.Contains(err.Error(), registration.MsgPhoneInUse)
	})
}

func (s *AdminServiceSuite) TestUpdateMissingRecord() {
	req := editRequest(&models.Registration{
		Nome: "Alguém", Email: "alguem@gmail.com", Whatsapp: "81999990000",
		EmergenciaNome: "Contato", EmergenciaTel: "81999991111", TermoImagem: true,
	})
	_, err := s.service.Update(context.Background(), 999, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AdminServiceSuite) TestDelete() {
	ctx := context.Background()
	reg := s.seed(1)

	s.Require().NoError(s.service.Delete(ctx, reg.ID))

	err := s.service.Delete(ctx, reg.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AdminServiceSuite) TestExport() {
	ctx := context.Background()

	s.Run("zero records refuses", func() {
		_, err := s.service.Export(ctx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("produces one line per record plus header", func() {
		s.seed(1)
		s.seed(2)
		blob, err := s.service.Export(ctx)
		s.Require().NoError(err)
		s.Len(splitLines(blob), 3)
	})
}

func splitLines(blob []byte) []string {
	var lines []string
	start := 0
	for i, b := range blob {
		if b == '\n' {
			lines = append(lines, string(blob[start:i]))
			start = i + 1
		}
	}
	return append(lines, string(blob[start:]))
}
