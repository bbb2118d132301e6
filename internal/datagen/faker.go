//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates synthetic retail CSV files.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for
// reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// FirstName generates a random first name.
func (f *Faker) FirstName() string {
	return f.faker.FirstName()
}

// LastName generates a random last name.
func (f *Faker) LastName() string {
	return f.faker.LastName()
}

// City generates a random city name.
func (f *Faker) City() string {
	return f.faker.City()
}

// State generates a random state name.
func (f *Faker) State() string {
	return f.faker.State()
}

// Company generates a random company name.
func (f *Faker) Company() string {
	return f.faker.Company()
}

// ProductName generates a random product name.
func (f *Faker) ProductName() string {
	return f.faker.ProductName()
}

// Price generates a random price between min and max.
func (f *Faker) Price(min, max float64) float64 {
	return f.faker.Price(min, max)
}

// Number generates a random integer between min and max inclusive.
func (f *Faker) Number(min, max int) int {
	return f.faker.Number(min, max)
}

// Float64Range generates a random float between min and max.
func (f *Faker) Float64Range(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Choice picks one option uniformly.
func (f *Faker) Choice(options []string) string {
	return f.faker.RandomString(options)
}

// Weighted picks one option according to the given weights.
func (f *Faker) Weighted(options []string, weights []float32) string {
	anyOptions := make([]any, len(options))
	for i, o := range options {
		anyOptions[i] = o
	}
	picked, err := f.faker.Weighted(anyOptions, weights)
	if err != nil {
		// Only possible with mismatched argument lengths.
		return options[0]
	}
	return picked.(string)
}

// Date generates a random time between start and end.
func (f *Faker) Date(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end)
}
