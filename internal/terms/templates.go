// Package terms provides the canned terms-and-conditions templates used when
// preparing sales and procurement documents, plus the structured parser for
// the Payment Terms section.
package terms

import (
	"errors"
	"sort"
)

const PaymentSection = "Payment Terms"

var ErrUnknownSection = errors.New("terms: unknown section")

// Section is one block of a document's terms. Every section except
// PaymentSection is opaque text; PaymentSection parses into PaymentPhase rows.
type Section struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

var defaultTemplates = map[string]string{
	"Validity": "This quotation is valid for 30 days from the date of issue. " +
		"Prices are subject to revision thereafter.",
	PaymentSection: "Deposit: 50% - On order confirmation\n" +
		"Balance: 50% - On delivery",
	"Delivery": "Delivery within 14 working days of order confirmation unless " +
		"otherwise agreed in writing. Risk passes to the buyer on delivery.",
	"Warranty": "Goods are warranted against defects in materials and workmanship " +
		"for 12 months from delivery. The warranty excludes consumables and damage " +
		"caused by misuse.",
	"Returns": "Returns are accepted within 7 days of delivery for goods in their " +
		"original condition and packaging. A restocking fee may apply.",
	"Governing Law": "These terms are governed by the laws of the Republic of Zambia. " +
		"Disputes are subject to the exclusive jurisdiction of the Lusaka courts.",
}

// SectionNames returns the template section names in stable order.
func SectionNames() []string {
	names := make([]string, 0, len(defaultTemplates))
	for name := range defaultTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns the canned body for a section.
func Template(name string) (string, error) {
	body, ok := defaultTemplates[name]
	if !ok {
		return "", ErrUnknownSection
	}
	return body, nil
}

// Templates returns every canned section.
func Templates() []Section {
	names := SectionNames()
	out := make([]Section, 0, len(names))
	for _, name := range names {
		out = append(out, Section{Name: name, Body: defaultTemplates[name]})
	}
	return out
}
