package scoring

import "sort"

// TotalFor sums a player's points in room, or across all rooms when room is RoomNone.
func TotalFor(game Game, playerID string, room RoomID) int {
	total := 0
	for _, bucket := range game.Scores {
		if bucket.PlayerID != playerID {
			continue
		}
		if room != RoomNone && bucket.RoomID != room {
			continue
		}
		for _, entry := range bucket.Entries {
			total += entry.Points
		}
	}
	return total
}

type PlayerTotals struct {
	PlayerID string         `json:"playerId"`
	Name     string         `json:"name"`
	Rooms    map[string]int `json:"rooms"`
	Hits     int            `json:"hits"`
	Total    int            `json:"total"`
}

// Totals returns one row per player in player order.
func Totals(game Game) []PlayerTotals {
	rows := make([]PlayerTotals, 0, len(game.Players))
	for _, player := range game.Players {
		row := PlayerTotals{
			PlayerID: player.ID,
			Name:     player.Name,
			Rooms:    make(map[string]int, len(Rooms)),
		}
		for _, room := range Rooms {
			row.Rooms[room.Key()] = TotalFor(game, player.ID, room)
		}
		for _, bucket := range game.Scores {
			if bucket.PlayerID == player.ID {
				row.Hits += len(bucket.Entries)
			}
		}
		row.Total = TotalFor(game, player.ID, RoomNone)
		rows = append(rows, row)
	}
	return rows
}

type Standing struct {
	Rank int `json:"rank"`
	PlayerTotals
}

// Ranking orders players by grand total, highest first. Ties keep player order.
func Ranking(game Game) []Standing {
	rows := Totals(game)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	standings := make([]Standing, len(rows))
	for i, row := range rows {
		standings[i] = Standing{Rank: i + 1, PlayerTotals: row}
	}
	return standings
}
