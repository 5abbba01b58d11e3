package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// Access is what a username is allowed to do. Room is RoomNone for admins and
// for unknown users.
type Access struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	Room     RoomID `json:"room"`
}

func (a Access) Known() bool {
	return a.IsAdmin || a.Room.Valid()
}

// CanEnter reports whether the actor may record hits or complete room.
func (a Access) CanEnter(room RoomID) bool {
	if a.IsAdmin {
		return true
	}
	return room.Valid() && a.Room == room
}

type Policy struct {
	admins map[string]struct{}
	rooms  map[string]RoomID
}

// NewPolicy validates and normalizes an identity table. A username may not be
// both an admin and assigned to a room.
func NewPolicy(admins []string, rooms map[string]RoomID) (*Policy, error) {
	p := &Policy{
		admins: make(map[string]struct{}, len(admins)),
		rooms:  make(map[string]RoomID, len(rooms)),
	}
	for _, raw := range admins {
		name := NormalizeUsername(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: admin username is empty", ErrInvalidInput)
		}
		p.admins[name] = struct{}{}
	}
	if len(p.admins) == 0 {
		return nil, fmt.Errorf("%w: at least one admin is required", ErrInvalidInput)
	}
	for raw, room := range rooms {
		name := NormalizeUsername(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: room username is empty", ErrInvalidInput)
		}
		if !room.Valid() {
			return nil, fmt.Errorf("%w: user %s has invalid room %d", ErrInvalidInput, name, room)
		}
		if _, ok := p.admins[name]; ok {
			return nil, fmt.Errorf("%w: user %s is both admin and room user", ErrInvalidInput, name)
		}
		p.rooms[name] = room
	}
	return p, nil
}

// DefaultPolicy is one admin plus one data-entry user per room.
func DefaultPolicy() *Policy {
	p, err := NewPolicy([]string{"user01"}, map[string]RoomID{
		"user02": RoomFire,
		"user03": RoomWater,
		"user04": RoomAir,
	})
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policy) Resolve(username string) Access {
	name := NormalizeUsername(username)
	access := Access{Username: name}
	if name == "" {
		return access
	}
	if _, ok := p.admins[name]; ok {
		access.IsAdmin = true
		return access
	}
	access.Room = p.rooms[name]
	return access
}

// Usernames lists every known identity, sorted.
func (p *Policy) Usernames() []string {
	names := make([]string, 0, len(p.admins)+len(p.rooms))
	for name := range p.admins {
		names = append(names, name)
	}
	for name := range p.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
