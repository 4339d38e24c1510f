package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Contact is the lender behind one or more contracts. It is a plain snapshot record
// owned by the persistence layer.
type Contact struct {
	ID        uuid.UUID
	Number    int
	LastName  string
	FirstName string
	Address   string
	Phone     string
	Email     string
	IBAN      string
	BIC       string
	BankName  string
	Remark    string
}

// FullName returns "Last, First".
func (c Contact) FullName() string {
	return fmt.Sprintf("%s, %s", c.LastName, c.FirstName)
}
