package content

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var ErrInvalid = errors.New("invalid input")

// ValidationError lists the fields that failed basic form validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

type checker struct {
	bad []string
}

func (c *checker) require(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.bad = append(c.bad, field)
	}
}

func (c *checker) check(field string, ok bool) {
	if !ok {
		c.bad = append(c.bad, field)
	}
}

func (c *checker) err() error {
	if len(c.bad) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.bad}
}

// NewBrief fills in the defaults the intake form would have preselected.
func NewBrief(clientName, companyName, email, goals string) Brief {
	return Brief{
		ClientName:   strings.TrimSpace(clientName),
		CompanyName:  strings.TrimSpace(companyName),
		Email:        strings.TrimSpace(email),
		ProjectGoals: strings.TrimSpace(goals),
		Deliverables: []string{},
		Budget:       DefaultBudget,
		Timeline:     DefaultTimeline,
		Status:       BriefNew,
	}
}

func (b Brief) Validate() error {
	var c checker
	c.require("clientName", b.ClientName)
	c.require("companyName", b.CompanyName)
	c.require("projectGoals", b.ProjectGoals)
	_, err := mail.ParseAddress(b.Email)
	c.check("email", err == nil)
	c.check("budget", IsBudgetTier(b.Budget))
	c.check("timeline", IsTimeline(b.Timeline))
	for _, d := range b.Deliverables {
		if !IsDeliverable(d) {
			c.check("deliverables", false)
			break
		}
	}
	return c.err()
}

func (r Review) Validate() error {
	var c checker
	c.require("clientName", r.ClientName)
	c.require("content", r.Content)
	c.check("rating", r.Rating >= 1 && r.Rating <= 5)
	return c.err()
}

func (p Project) Validate() error {
	var c checker
	c.require("title", p.Title)
	c.check("category", IsCategory(p.Category))
	return c.err()
}
