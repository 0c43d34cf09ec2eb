package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
	"github.com/mahdighaemi123/ActCastBot/internal/survey"
)

// votersHeader is the column layout of the per-voter CSV export.
var votersHeader = []string{"user_id", "full_name", "username", "phone", "option_id", "option_text"}

// WriteVotersCSV writes one row per vote in the given survey. Users
// are looked up in a single pass so the caller can batch-fetch them
// with UserRepo.ByIDs.
func WriteVotersCSV(w io.Writer, s *storage.Survey, users []storage.User) error {
	byID := make(map[int64]*storage.User, len(users))
	for i := range users {
		byID[users[i].UserID] = &users[i]
	}

	// Stable output regardless of map iteration order.
	voterIDs := make([]string, 0, len(s.Votes))
	for uid := range s.Votes {
		voterIDs = append(voterIDs, uid)
	}
	sort.Strings(voterIDs)

	cw := csv.NewWriter(w)
	if err := cw.Write(votersHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, uid := range voterIDs {
		optionID := s.Votes[uid]
		var fullName, username, phone string
		if id, err := strconv.ParseInt(uid, 10, 64); err == nil {
			if u, ok := byID[id]; ok {
				fullName = joinName(u.FirstName, u.LastName)
				username = u.Username
				phone = u.Phone
			}
		}
		row := []string{uid, fullName, username, phone, optionID, survey.OptionText(s, optionID)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// joinName renders "first last", tolerating either part being empty.
func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// VoterIDs returns the numeric ids of everyone who voted in the
// survey, skipping malformed keys.
func VoterIDs(s *storage.Survey) []int64 {
	ids := make([]int64, 0, len(s.Votes))
	for uid := range s.Votes {
		if id, err := strconv.ParseInt(uid, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
