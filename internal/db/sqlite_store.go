package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/panelhive/panelhive/internal/api"
	"github.com/panelhive/panelhive/internal/services"
	"github.com/panelhive/panelhive/internal/utils"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if err := CreateSchema(db); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

func toNullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func fromNullInt(ns sql.NullInt64) *int {
	if !ns.Valid {
		return nil
	}
	v := int(ns.Int64)
	return &v
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeStringSlice(ns sql.NullString) []string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode string slice: %v", err)
		return nil
	}
	return out
}

func decodeFilters(ns sql.NullString) *api.AudienceFilters {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out api.AudienceFilters
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode filters: %v", err)
		return nil
	}
	return &out
}

// --- Panelists ---

const panelistCols = "id, user_id, age, gender, location, income, education, employment, interests, is_active, points_balance, total_points_earned, total_points_redeemed, created_at"

func scanPanelist(row interface{ Scan(...any) error }) (*api.Panelist, error) {
	var p api.Panelist
	var age, income sql.NullInt64
	var interests sql.NullString
	var active int64
	err := row.Scan(&p.ID, &p.UserID, &age, &p.Gender, &p.Location, &income, &p.Education, &p.Employment,
		&interests, &active, &p.PointsBalance, &p.TotalPointsEarned, &p.TotalPointsRedeemed, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Age = fromNullInt(age)
	p.Income = fromNullInt(income)
	p.Interests = decodeStringSlice(interests)
	p.IsActive = int64ToBool(active)
	return &p, nil
}

func (s *SQLiteStore) AddPanelist(p *api.Panelist) {
	interests, err := encodeJSON(p.Interests)
	if err != nil {
		s.logErr("encode interests", err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO panelists (`+panelistCols+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.UserID, toNullInt(p.Age), p.Gender, p.Location, toNullInt(p.Income), p.Education, p.Employment,
		interests, boolToInt64(p.IsActive), p.PointsBalance, p.TotalPointsEarned, p.TotalPointsRedeemed, p.CreatedAt)
	s.logErr("add panelist", err)
}

func (s *SQLiteStore) GetPanelist(id string) *api.Panelist {
	row := s.db.QueryRow(`SELECT `+panelistCols+` FROM panelists WHERE id = ?`, id)
	p, err := scanPanelist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get panelist", err)
		return nil
	}
	return p
}

func (s *SQLiteStore) ListActivePanelists() []*api.Panelist {
	rows, err := s.db.Query(`SELECT ` + panelistCols + ` FROM panelists WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		s.logErr("list active panelists", err)
		return nil
	}
	defer rows.Close()
	out := []*api.Panelist{}
	for rows.Next() {
		p, err := scanPanelist(rows)
		if err != nil {
			s.logErr("scan panelist", err)
			continue
		}
		out = append(out, p)
	}
	s.logErr("iterate panelists", rows.Err())
	return out
}

func (s *SQLiteStore) UpdatePanelist(p *api.Panelist) bool {
	interests, err := encodeJSON(p.Interests)
	if err != nil {
		s.logErr("encode interests", err)
		return false
	}
	// balances move only through the points primitives
	res, err := s.db.Exec(`UPDATE panelists SET user_id=?, age=?, gender=?, location=?, income=?, education=?, employment=?, interests=?, is_active=? WHERE id=?`,
		p.UserID, toNullInt(p.Age), p.Gender, p.Location, toNullInt(p.Income), p.Education, p.Employment,
		interests, boolToInt64(p.IsActive), p.ID)
	if err != nil {
		s.logErr("update panelist", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) DeactivatePanelist(id string) bool {
	res, err := s.db.Exec(`UPDATE panelists SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		s.logErr("deactivate panelist", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// --- Points ---

func (s *SQLiteStore) CreditPoints(panelistID string, points int, kind, refID string) bool {
	tx, err := s.db.Begin()
	if err != nil {
		s.logErr("begin credit", err)
		return false
	}
	defer tx.Rollback()
	res, err := tx.Exec(`UPDATE panelists SET points_balance = points_balance + ?, total_points_earned = total_points_earned + ? WHERE id = ?`,
		points, points, panelistID)
	if err != nil {
		s.logErr("credit balance", err)
		return false
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false
	}
	_, err = tx.Exec(`INSERT INTO points_entries (id, panelist_id, points, kind, ref_id, earned_at) VALUES (?,?,?,?,?,?)`,
		utils.ShortID(16), panelistID, points, kind, refID, time.Now().UTC())
	if err != nil {
		s.logErr("credit entry", err)
		return false
	}
	if err := tx.Commit(); err != nil {
		s.logErr("commit credit", err)
		return false
	}
	return true
}

func (s *SQLiteStore) DebitPoints(panelistID string, points int, refID string) bool {
	tx, err := s.db.Begin()
	if err != nil {
		s.logErr("begin debit", err)
		return false
	}
	defer tx.Rollback()
	// the balance floor is enforced by the conditional update
	res, err := tx.Exec(`UPDATE panelists SET points_balance = points_balance - ?, total_points_redeemed = total_points_redeemed + ? WHERE id = ? AND points_balance >= ?`,
		points, points, panelistID, points)
	if err != nil {
		s.logErr("debit balance", err)
		return false
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false
	}
	_, err = tx.Exec(`INSERT INTO points_entries (id, panelist_id, points, kind, ref_id, earned_at) VALUES (?,?,?,?,?,?)`,
		utils.ShortID(16), panelistID, -points, services.PointsKindRedemption, refID, time.Now().UTC())
	if err != nil {
		s.logErr("debit entry", err)
		return false
	}
	if err := tx.Commit(); err != nil {
		s.logErr("commit debit", err)
		return false
	}
	return true
}

func (s *SQLiteStore) SumPointsInWindow(panelistID string, from, to time.Time) int {
	var total sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(points) FROM points_entries WHERE panelist_id = ? AND points > 0 AND earned_at >= ? AND earned_at <= ?`,
		panelistID, from, to).Scan(&total)
	if err != nil {
		s.logErr("sum points", err)
		return 0
	}
	return int(total.Int64)
}

func (s *SQLiteStore) HasPointsEntry(panelistID, kind, refID string) bool {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM points_entries WHERE panelist_id = ? AND kind = ? AND ref_id = ?`,
		panelistID, kind, refID).Scan(&n)
	if err != nil {
		s.logErr("has points entry", err)
		return false
	}
	return n > 0
}

func (s *SQLiteStore) ListPointsEntries(panelistID string) []*api.PointsEntry {
	rows, err := s.db.Query(`SELECT id, panelist_id, points, kind, ref_id, earned_at FROM points_entries WHERE panelist_id = ? ORDER BY earned_at DESC`, panelistID)
	if err != nil {
		s.logErr("list points entries", err)
		return nil
	}
	defer rows.Close()
	out := []*api.PointsEntry{}
	for rows.Next() {
		var e api.PointsEntry
		if err := rows.Scan(&e.ID, &e.PanelistID, &e.Points, &e.Kind, &e.RefID, &e.EarnedAt); err != nil {
			s.logErr("scan points entry", err)
			continue
		}
		out = append(out, &e)
	}
	s.logErr("iterate points entries", rows.Err())
	return out
}

// --- Surveys ---

const surveyCols = "id, title, description, points, estimated_minutes, status, filters, created_by, created_at"

func scanSurvey(row interface{ Scan(...any) error }) (*api.Survey, error) {
	var sv api.Survey
	var filters sql.NullString
	err := row.Scan(&sv.ID, &sv.Title, &sv.Description, &sv.Points, &sv.EstimatedMinutes, &sv.Status, &filters, &sv.CreatedBy, &sv.CreatedAt)
	if err != nil {
		return nil, err
	}
	sv.Filters = decodeFilters(filters)
	return &sv, nil
}

func (s *SQLiteStore) AddSurvey(sv *api.Survey) {
	filters, err := encodeJSON(sv.Filters)
	if err != nil {
		s.logErr("encode filters", err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO surveys (`+surveyCols+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		sv.ID, sv.Title, sv.Description, sv.Points, sv.EstimatedMinutes, sv.Status, filters, sv.CreatedBy, sv.CreatedAt)
	s.logErr("add survey", err)
}

func (s *SQLiteStore) GetSurvey(id string) *api.Survey {
	row := s.db.QueryRow(`SELECT `+surveyCols+` FROM surveys WHERE id = ?`, id)
	sv, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get survey", err)
		return nil
	}
	return sv
}

func (s *SQLiteStore) UpdateSurvey(sv *api.Survey) bool {
	filters, err := encodeJSON(sv.Filters)
	if err != nil {
		s.logErr("encode filters", err)
		return false
	}
	res, err := s.db.Exec(`UPDATE surveys SET title=?, description=?, points=?, estimated_minutes=?, status=?, filters=? WHERE id=?`,
		sv.Title, sv.Description, sv.Points, sv.EstimatedMinutes, sv.Status, filters, sv.ID)
	if err != nil {
		s.logErr("update survey", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListSurveys() []*api.Survey {
	rows, err := s.db.Query(`SELECT ` + surveyCols + ` FROM surveys ORDER BY id`)
	if err != nil {
		s.logErr("list surveys", err)
		return nil
	}
	defer rows.Close()
	out := []*api.Survey{}
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			s.logErr("scan survey", err)
			continue
		}
		out = append(out, sv)
	}
	s.logErr("iterate surveys", rows.Err())
	return out
}

func (s *SQLiteStore) UpsertQualifications(qs []*api.SurveyQualification) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT INTO survey_qualifications (survey_id, panelist_id, is_qualified, reason, evaluated_at) VALUES (?,?,?,?,?)
		ON CONFLICT(survey_id, panelist_id) DO UPDATE SET is_qualified = excluded.is_qualified, reason = excluded.reason, evaluated_at = excluded.evaluated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, q := range qs {
		if _, err := stmt.Exec(q.SurveyID, q.PanelistID, boolToInt64(q.IsQualified), q.Reason, q.EvaluatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetQualification(surveyID, panelistID string) *api.SurveyQualification {
	var q api.SurveyQualification
	var qualified int64
	err := s.db.QueryRow(`SELECT survey_id, panelist_id, is_qualified, reason, evaluated_at FROM survey_qualifications WHERE survey_id = ? AND panelist_id = ?`,
		surveyID, panelistID).Scan(&q.SurveyID, &q.PanelistID, &qualified, &q.Reason, &q.EvaluatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get qualification", err)
		return nil
	}
	q.IsQualified = int64ToBool(qualified)
	return &q
}

func (s *SQLiteStore) ListQualificationsBySurvey(surveyID string) []*api.SurveyQualification {
	rows, err := s.db.Query(`SELECT survey_id, panelist_id, is_qualified, reason, evaluated_at FROM survey_qualifications WHERE survey_id = ? ORDER BY panelist_id`, surveyID)
	if err != nil {
		s.logErr("list qualifications", err)
		return nil
	}
	defer rows.Close()
	out := []*api.SurveyQualification{}
	for rows.Next() {
		var q api.SurveyQualification
		var qualified int64
		if err := rows.Scan(&q.SurveyID, &q.PanelistID, &qualified, &q.Reason, &q.EvaluatedAt); err != nil {
			s.logErr("scan qualification", err)
			continue
		}
		q.IsQualified = int64ToBool(qualified)
		out = append(out, &q)
	}
	s.logErr("iterate qualifications", rows.Err())
	return out
}

// --- Contests ---

const contestCols = "id, title, description, start_date, end_date, prize_points, status, invite_type, invited_ids, created_at"

func scanContest(row interface{ Scan(...any) error }) (*api.Contest, error) {
	var c api.Contest
	var invited sql.NullString
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.StartDate, &c.EndDate, &c.PrizePoints, &c.Status, &c.InviteType, &invited, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.InvitedIDs = decodeStringSlice(invited)
	return &c, nil
}

func (s *SQLiteStore) AddContest(c *api.Contest) {
	invited, err := encodeJSON(c.InvitedIDs)
	if err != nil {
		s.logErr("encode invited ids", err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO contests (`+contestCols+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.Title, c.Description, c.StartDate, c.EndDate, c.PrizePoints, c.Status, c.InviteType, invited, c.CreatedAt)
	s.logErr("add contest", err)
}

func (s *SQLiteStore) GetContest(id string) *api.Contest {
	row := s.db.QueryRow(`SELECT `+contestCols+` FROM contests WHERE id = ?`, id)
	c, err := scanContest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get contest", err)
		return nil
	}
	return c
}

func (s *SQLiteStore) ListContests() []*api.Contest {
	rows, err := s.db.Query(`SELECT ` + contestCols + ` FROM contests ORDER BY id`)
	if err != nil {
		s.logErr("list contests", err)
		return nil
	}
	defer rows.Close()
	out := []*api.Contest{}
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			s.logErr("scan contest", err)
			continue
		}
		out = append(out, c)
	}
	s.logErr("iterate contests", rows.Err())
	return out
}

func (s *SQLiteStore) UpdateContestStatus(id, status string) bool {
	res, err := s.db.Exec(`UPDATE contests SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		s.logErr("update contest status", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) AddParticipation(p *api.ContestParticipation) error {
	_, err := s.db.Exec(`INSERT INTO contest_participations (contest_id, panelist_id, rank, points_earned, prize_awarded, joined_at) VALUES (?,?,?,?,?,?)`,
		p.ContestID, p.PanelistID, toNullInt(p.Rank), p.PointsEarned, boolToInt64(p.PrizeAwarded), p.JoinedAt)
	if isUniqueViolation(err) {
		return api.ErrDuplicate
	}
	return err
}

func (s *SQLiteStore) GetParticipation(contestID, panelistID string) *api.ContestParticipation {
	var p api.ContestParticipation
	var rank sql.NullInt64
	var awarded int64
	err := s.db.QueryRow(`SELECT contest_id, panelist_id, rank, points_earned, prize_awarded, joined_at FROM contest_participations WHERE contest_id = ? AND panelist_id = ?`,
		contestID, panelistID).Scan(&p.ContestID, &p.PanelistID, &rank, &p.PointsEarned, &awarded, &p.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get participation", err)
		return nil
	}
	p.Rank = fromNullInt(rank)
	p.PrizeAwarded = int64ToBool(awarded)
	return &p
}

func (s *SQLiteStore) ListParticipations(contestID string) []*api.ContestParticipation {
	rows, err := s.db.Query(`SELECT contest_id, panelist_id, rank, points_earned, prize_awarded, joined_at FROM contest_participations WHERE contest_id = ? ORDER BY panelist_id`, contestID)
	if err != nil {
		s.logErr("list participations", err)
		return nil
	}
	defer rows.Close()
	out := []*api.ContestParticipation{}
	for rows.Next() {
		var p api.ContestParticipation
		var rank sql.NullInt64
		var awarded int64
		if err := rows.Scan(&p.ContestID, &p.PanelistID, &rank, &p.PointsEarned, &awarded, &p.JoinedAt); err != nil {
			s.logErr("scan participation", err)
			continue
		}
		p.Rank = fromNullInt(rank)
		p.PrizeAwarded = int64ToBool(awarded)
		out = append(out, &p)
	}
	s.logErr("iterate participations", rows.Err())
	return out
}

func (s *SQLiteStore) SetRanks(contestID string, ranks []api.RankAssignment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`UPDATE contest_participations SET rank = ?, points_earned = ? WHERE contest_id = ? AND panelist_id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range ranks {
		res, err := stmt.Exec(r.Rank, r.PointsEarned, contestID, r.PanelistID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return api.ErrNotFound
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) MarkPrizeAwarded(contestID, panelistID string) bool {
	// the conditional update makes the flip one-shot under concurrency
	res, err := s.db.Exec(`UPDATE contest_participations SET prize_awarded = 1 WHERE contest_id = ? AND panelist_id = ? AND prize_awarded = 0`,
		contestID, panelistID)
	if err != nil {
		s.logErr("mark prize awarded", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// --- Offers & redemptions ---

func (s *SQLiteStore) AddOffer(o *api.MerchantOffer) {
	_, err := s.db.Exec(`INSERT INTO offers (id, merchant, title, points_cost, is_active, created_at) VALUES (?,?,?,?,?,?)`,
		o.ID, o.Merchant, o.Title, o.PointsCost, boolToInt64(o.IsActive), o.CreatedAt)
	s.logErr("add offer", err)
}

func (s *SQLiteStore) GetOffer(id string) *api.MerchantOffer {
	var o api.MerchantOffer
	var active int64
	err := s.db.QueryRow(`SELECT id, merchant, title, points_cost, is_active, created_at FROM offers WHERE id = ?`, id).
		Scan(&o.ID, &o.Merchant, &o.Title, &o.PointsCost, &active, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get offer", err)
		return nil
	}
	o.IsActive = int64ToBool(active)
	return &o
}

func (s *SQLiteStore) UpdateOffer(o *api.MerchantOffer) bool {
	res, err := s.db.Exec(`UPDATE offers SET merchant=?, title=?, points_cost=?, is_active=? WHERE id=?`,
		o.Merchant, o.Title, o.PointsCost, boolToInt64(o.IsActive), o.ID)
	if err != nil {
		s.logErr("update offer", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListOffers(activeOnly bool) []*api.MerchantOffer {
	q := `SELECT id, merchant, title, points_cost, is_active, created_at FROM offers ORDER BY id`
	if activeOnly {
		q = `SELECT id, merchant, title, points_cost, is_active, created_at FROM offers WHERE is_active = 1 ORDER BY id`
	}
	rows, err := s.db.Query(q)
	if err != nil {
		s.logErr("list offers", err)
		return nil
	}
	defer rows.Close()
	out := []*api.MerchantOffer{}
	for rows.Next() {
		var o api.MerchantOffer
		var active int64
		if err := rows.Scan(&o.ID, &o.Merchant, &o.Title, &o.PointsCost, &active, &o.CreatedAt); err != nil {
			s.logErr("scan offer", err)
			continue
		}
		o.IsActive = int64ToBool(active)
		out = append(out, &o)
	}
	s.logErr("iterate offers", rows.Err())
	return out
}

func (s *SQLiteStore) AddRedemption(r *api.Redemption) {
	_, err := s.db.Exec(`INSERT INTO redemptions (id, panelist_id, offer_id, points_spent, redeemed_at) VALUES (?,?,?,?,?)`,
		r.ID, r.PanelistID, r.OfferID, r.PointsSpent, r.RedeemedAt)
	s.logErr("add redemption", err)
}

func (s *SQLiteStore) ListRedemptionsByPanelist(panelistID string) []*api.Redemption {
	rows, err := s.db.Query(`SELECT id, panelist_id, offer_id, points_spent, redeemed_at FROM redemptions WHERE panelist_id = ? ORDER BY redeemed_at DESC`, panelistID)
	if err != nil {
		s.logErr("list redemptions", err)
		return nil
	}
	defer rows.Close()
	out := []*api.Redemption{}
	for rows.Next() {
		var r api.Redemption
		if err := rows.Scan(&r.ID, &r.PanelistID, &r.OfferID, &r.PointsSpent, &r.RedeemedAt); err != nil {
			s.logErr("scan redemption", err)
			continue
		}
		out = append(out, &r)
	}
	s.logErr("iterate redemptions", rows.Err())
	return out
}

// --- Scan tasks ---

const scanCols = "id, panelist_id, image_key, points, status, submitted_at, reviewed_at, reviewed_by"

func scanScanTask(row interface{ Scan(...any) error }) (*api.ScanTask, error) {
	var t api.ScanTask
	var reviewedAt sql.NullTime
	err := row.Scan(&t.ID, &t.PanelistID, &t.ImageKey, &t.Points, &t.Status, &t.SubmittedAt, &reviewedAt, &t.ReviewedBy)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		at := reviewedAt.Time
		t.ReviewedAt = &at
	}
	return &t, nil
}

func (s *SQLiteStore) AddScanTask(t *api.ScanTask) {
	var reviewedAt sql.NullTime
	if t.ReviewedAt != nil {
		reviewedAt = sql.NullTime{Time: *t.ReviewedAt, Valid: true}
	}
	_, err := s.db.Exec(`INSERT INTO scan_tasks (`+scanCols+`) VALUES (?,?,?,?,?,?,?,?)`,
		t.ID, t.PanelistID, t.ImageKey, t.Points, t.Status, t.SubmittedAt, reviewedAt, t.ReviewedBy)
	s.logErr("add scan task", err)
}

func (s *SQLiteStore) GetScanTask(id string) *api.ScanTask {
	row := s.db.QueryRow(`SELECT `+scanCols+` FROM scan_tasks WHERE id = ?`, id)
	t, err := scanScanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get scan task", err)
		return nil
	}
	return t
}

func (s *SQLiteStore) UpdateScanTask(t *api.ScanTask) bool {
	var reviewedAt sql.NullTime
	if t.ReviewedAt != nil {
		reviewedAt = sql.NullTime{Time: *t.ReviewedAt, Valid: true}
	}
	res, err := s.db.Exec(`UPDATE scan_tasks SET points=?, status=?, reviewed_at=?, reviewed_by=? WHERE id=?`,
		t.Points, t.Status, reviewedAt, t.ReviewedBy, t.ID)
	if err != nil {
		s.logErr("update scan task", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListScanTasks(status string) []*api.ScanTask {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query(`SELECT ` + scanCols + ` FROM scan_tasks ORDER BY submitted_at`)
	} else {
		rows, err = s.db.Query(`SELECT `+scanCols+` FROM scan_tasks WHERE status = ? ORDER BY submitted_at`, status)
	}
	if err != nil {
		s.logErr("list scan tasks", err)
		return nil
	}
	defer rows.Close()
	out := []*api.ScanTask{}
	for rows.Next() {
		t, err := scanScanTask(rows)
		if err != nil {
			s.logErr("scan scan task", err)
			continue
		}
		out = append(out, t)
	}
	s.logErr("iterate scan tasks", rows.Err())
	return out
}

// --- Users & activity ---

func (s *SQLiteStore) AddUser(u *api.User) {
	_, err := s.db.Exec(`INSERT INTO users (id, email, pass_hash, role, panelist_id, created_at) VALUES (?,?,?,?,?,?)`,
		u.ID, u.Email, u.PassHash, u.Role, u.PanelistID, u.CreatedAt)
	s.logErr("add user", err)
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	var u api.User
	err := s.db.QueryRow(`SELECT id, email, pass_hash, role, panelist_id, created_at FROM users WHERE email = ? COLLATE NOCASE`, email).
		Scan(&u.ID, &u.Email, &u.PassHash, &u.Role, &u.PanelistID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("find user", err)
		return nil
	}
	return &u
}

func (s *SQLiteStore) AddActivity(e api.ActivityEntry) {
	_, err := s.db.Exec(`INSERT INTO activity_log (at, actor, action, target, note) VALUES (?,?,?,?,?)`,
		e.Time, e.Actor, e.Action, e.Target, e.Note)
	s.logErr("add activity", err)
}

func (s *SQLiteStore) ListActivity() []api.ActivityEntry {
	rows, err := s.db.Query(`SELECT at, actor, action, target, note FROM activity_log ORDER BY at`)
	if err != nil {
		s.logErr("list activity", err)
		return nil
	}
	defer rows.Close()
	out := []api.ActivityEntry{}
	for rows.Next() {
		var e api.ActivityEntry
		if err := rows.Scan(&e.Time, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			s.logErr("scan activity", err)
			continue
		}
		out = append(out, e)
	}
	s.logErr("iterate activity", rows.Err())
	return out
}

var _ api.Store = (*SQLiteStore)(nil)
