// Package forms renders allocation and return forms from structured data.
package forms

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	Allocation Kind = "allocation"
	Return     Kind = "return"
)

// ParseKind accepts "allocation" or "return" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Allocation:
		return Allocation, nil
	case Return:
		return Return, nil
	}
	return "", fmt.Errorf("unknown form kind %q: the only options are allocation and return", s)
}

// Renderer is a pure function of its input: same payload, same document.
type Renderer interface {
	Render(kind Kind, p Payload) ([]byte, error)
}

type Person struct {
	FirstName string
	LastName  string
	Username  string
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type Device struct {
	Brand        string
	Model        string
	SerialNumber string
	AssetTag     string
}

// Header is the document-control block printed on every form.
type Header struct {
	OrgName    string
	Address    string
	DocNumber  string
	Revision   string
	ApprovedBy string
}

func DefaultHeader(orgName, address string) Header {
	return Header{
		OrgName:    orgName,
		Address:    address,
		DocNumber:  "IT-AL-001",
		Revision:   "03",
		ApprovedBy: "Head of IT",
	}
}

type Payload struct {
	Header      Header
	GeneratedAt time.Time

	Employee  Person
	Device    Device
	Allocator Person
	Returner  Person

	AllocationDate      time.Time
	AllocationCondition string
	Reason              string

	ReturnDate        *time.Time
	ReturnComment     string
	ConditionOnReturn string
}

// Title 表单标题
func Title(kind Kind) string {
	if kind == Return {
		return "Laptop Return Form"
	}
	return "Laptop Allocation Form"
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02-01-2006")
}
