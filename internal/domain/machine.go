package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MachineCategory distinguishes cardio equipment from strength equipment.
type MachineCategory string

const (
	CategoryCardio   MachineCategory = "cardio"
	CategoryStrength MachineCategory = "strength"
)

func (c MachineCategory) Valid() bool {
	return c == CategoryCardio || c == CategoryStrength
}

// MachineStatus is the availability of a machine on the gym floor.
type MachineStatus string

const (
	MachineAvailable    MachineStatus = "available"
	MachineInUse        MachineStatus = "in-use"
	MachineOutOfService MachineStatus = "out-of-service"
)

func (s MachineStatus) Valid() bool {
	switch s {
	case MachineAvailable, MachineInUse, MachineOutOfService:
		return true
	}
	return false
}

// Machine is a unit of gym equipment.
type Machine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Category  MachineCategory    `bson:"category" json:"category"`
	Status    MachineStatus      `bson:"status" json:"status"`
	Location  string             `bson:"location,omitempty" json:"location,omitempty"` // e.g. "Floor 2"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MachineFilter narrows machine listings. Empty fields match everything.
type MachineFilter struct {
	Category MachineCategory
	Status   MachineStatus
}
