package acumatica

import "encoding/json"

// Acumatica's contract-based API wraps every field in a {"value": ...}
// object. Numbers decode into json.Number so money never touches float64.
type StringValue struct {
	Value string `json:"value"`
}

type NumberValue struct {
	Value json.Number `json:"value"`
}

type Customer struct {
	CustomerID   StringValue `json:"CustomerID"`
	CustomerName StringValue `json:"CustomerName"`
	Email        StringValue `json:"Email"`
	Phone        StringValue `json:"Phone1"`
	Terms        StringValue `json:"Terms"`
	CreditLimit  NumberValue `json:"CreditLimit"`
}

type Invoice struct {
	Type          StringValue `json:"Type"`
	ReferenceNbr  StringValue `json:"ReferenceNbr"`
	Customer      StringValue `json:"Customer"`
	Date          StringValue `json:"Date"`
	DueDate       StringValue `json:"DueDate"`
	Amount        NumberValue `json:"Amount"`
	Balance       NumberValue `json:"Balance"`
	Status        StringValue `json:"Status"`
}

type Payment struct {
	Type            StringValue `json:"Type"`
	ReferenceNbr    StringValue `json:"ReferenceNbr"`
	CustomerID      StringValue `json:"CustomerID"`
	ApplicationDate StringValue `json:"ApplicationDate"`
	PaymentAmount   NumberValue `json:"PaymentAmount"`
}
