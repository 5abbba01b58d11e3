package web

import "time"

type GameSummary struct {
	ID          string
	Name        string
	Status      string
	CurrentRoom string
	Players     int
	Hits        int
	CreatedAt   time.Time
}

type PaginationData struct {
	BasePath   string
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type HomeData struct {
	Username   string
	IsAdmin    bool
	Room       string
	Games      []GameSummary
	Pagination PaginationData
}

type ResultRow struct {
	Rank       int
	Name       string
	RoomPoints []int
	Hits       int
	Total      int
}

type ResultsData struct {
	GameID    string
	Name      string
	Status    string
	Completed bool
	Rooms     []string
	Rows      []ResultRow
}
