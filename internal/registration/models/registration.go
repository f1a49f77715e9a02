package models

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// Registration is a confirmed participant record.
//
// Invariants:
//   - At most one record per email and one per whatsapp at any time
//   - Phone fields hold digits only, exactly 11 of them
//   - Email is stored lower-cased
//   - CreatedAt orders the admin listing (newest first)
type Registration struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Nome           string    `json:"nome"`
	Email          string    `json:"email"`
	Whatsapp       string    `json:"whatsapp"`
	EmergenciaNome string    `json:"emergencia_nome"`
	EmergenciaTel  string    `json:"emergencia_tel"`
	TermoImagem    bool      `json:"termo_imagem"`
}

// SubmitRequest is a raw candidate as posted by the registration form.
type SubmitRequest struct {
	Nome           string `json:"nome"`
	Email          string `json:"email"`
	Whatsapp       string `json:"whatsapp"`
	EmergenciaNome string `json:"emergenciaNome"`
	EmergenciaTel  string `json:"emergenciaTel"`
	TermoImagem    bool   `json:"termoImagem"`
}

// Personal e-mail providers accepted by the form. Corporate and throwaway
// domains are rejected so participants remain reachable after the event.
var allowedEmailDomains = map[string]struct{}{
	"gmail.com":    {},
	"outlook.com":  {},
	"hotmail.com":  {},
	"live.com":     {},
	"yahoo.com":    {},
	"yahoo.com.br": {},
	"icloud.com":   {},
	"uol.com.br":   {},
	"bol.com.br":   {},
}

const phoneDigits = 11

// Normalize strips formatting so two submissions of the same person compare
// equal: phones reduce to digits, email is trimmed and lower-cased, names are
// trimmed. Idempotent.
func (r *SubmitRequest) Normalize() {
	r.Nome = strings.TrimSpace(r.Nome)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Whatsapp = digitsOnly(r.Whatsapp)
	r.EmergenciaNome = strings.TrimSpace(r.EmergenciaNome)
	r.EmergenciaTel = digitsOnly(r.EmergenciaTel)
}

// Validate checks every field rule and returns a field-keyed message map.
// An empty map means the candidate is valid. Call Normalize first.
func (r *SubmitRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if utf8.RuneCountInString(r.Nome) < 3 {
		errs["nome"] = "name must have at least 3 characters"
	}
	if len(r.Whatsapp) != phoneDigits {
		errs["whatsapp"] = "phone must have exactly 11 digits (area code + number)"
	}
	if !validEmail(r.Email) {
		errs["email"] = "enter a valid e-mail address"
	} else if !allowedDomain(r.Email) {
		errs["email"] = "use a personal e-mail: Gmail, Outlook, Hotmail or Yahoo"
	}
	if utf8.RuneCountInString(r.EmergenciaNome) < 3 {
		errs["emergenciaNome"] = "emergency contact name is required"
	}
	if len(r.EmergenciaTel) != phoneDigits {
		errs["emergenciaTel"] = "emergency phone must have exactly 11 digits"
	}
	if !r.TermoImagem {
		errs["termoImagem"] = "you must accept the image release term"
	}

	return errs
}

// ToRegistration builds the record to persist from a normalized, valid
// candidate. ID and CreatedAt are assigned by the store.
func (r *SubmitRequest) ToRegistration() *Registration {
	return &Registration{
		Nome:           r.Nome,
		Email:          r.Email,
		Whatsapp:       r.Whatsapp,
		EmergenciaNome: r.EmergenciaNome,
		EmergenciaTel:  r.EmergenciaTel,
		TermoImagem:    r.TermoImagem,
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Ana <ana@gmail.com>".
	return addr.Address == email
}

func allowedDomain(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	_, ok := allowedEmailDomains[email[at+1:]]
	return ok
}
