package api

import "github.com/panelhive/panelhive/internal/services"

// Conversions between the wire/storage types in this package and the domain
// types the services operate on. Field sets are intentionally identical, so
// each direction is a plain copy.

func toServicePanelist(p *Panelist) *services.PanelistProfile {
	if p == nil {
		return nil
	}
	return &services.PanelistProfile{
		ID:                  p.ID,
		UserID:              p.UserID,
		Age:                 p.Age,
		Gender:              p.Gender,
		Location:            p.Location,
		Income:              p.Income,
		Education:           p.Education,
		Employment:          p.Employment,
		Interests:           p.Interests,
		IsActive:            p.IsActive,
		PointsBalance:       p.PointsBalance,
		TotalPointsEarned:   p.TotalPointsEarned,
		TotalPointsRedeemed: p.TotalPointsRedeemed,
		CreatedAt:           p.CreatedAt,
	}
}

func fromServicePanelist(p *services.PanelistProfile) *Panelist {
	if p == nil {
		return nil
	}
	return &Panelist{
		ID:                  p.ID,
		UserID:              p.UserID,
		Age:                 p.Age,
		Gender:              p.Gender,
		Location:            p.Location,
		Income:              p.Income,
		Education:           p.Education,
		Employment:          p.Employment,
		Interests:           p.Interests,
		IsActive:            p.IsActive,
		PointsBalance:       p.PointsBalance,
		TotalPointsEarned:   p.TotalPointsEarned,
		TotalPointsRedeemed: p.TotalPointsRedeemed,
		CreatedAt:           p.CreatedAt,
	}
}

func toServiceFilters(f *AudienceFilters) *services.AudienceFilters {
	if f == nil {
		return nil
	}
	return &services.AudienceFilters{
		Gender:     f.Gender,
		Location:   f.Location,
		Education:  f.Education,
		Employment: f.Employment,
		AgeMin:     f.AgeMin,
		AgeMax:     f.AgeMax,
		IncomeMin:  f.IncomeMin,
		IncomeMax:  f.IncomeMax,
	}
}

func fromServiceFilters(f *services.AudienceFilters) *AudienceFilters {
	if f == nil {
		return nil
	}
	return &AudienceFilters{
		Gender:     f.Gender,
		Location:   f.Location,
		Education:  f.Education,
		Employment: f.Employment,
		AgeMin:     f.AgeMin,
		AgeMax:     f.AgeMax,
		IncomeMin:  f.IncomeMin,
		IncomeMax:  f.IncomeMax,
	}
}

func toServiceSurvey(sv *Survey) *services.Survey {
	if sv == nil {
		return nil
	}
	return &services.Survey{
		ID:               sv.ID,
		Title:            sv.Title,
		Description:      sv.Description,
		Points:           sv.Points,
		EstimatedMinutes: sv.EstimatedMinutes,
		Status:           sv.Status,
		Filters:          toServiceFilters(sv.Filters),
		CreatedBy:        sv.CreatedBy,
		CreatedAt:        sv.CreatedAt,
	}
}

func fromServiceSurvey(sv *services.Survey) *Survey {
	if sv == nil {
		return nil
	}
	return &Survey{
		ID:               sv.ID,
		Title:            sv.Title,
		Description:      sv.Description,
		Points:           sv.Points,
		EstimatedMinutes: sv.EstimatedMinutes,
		Status:           sv.Status,
		Filters:          fromServiceFilters(sv.Filters),
		CreatedBy:        sv.CreatedBy,
		CreatedAt:        sv.CreatedAt,
	}
}

func fromServiceQualification(q *services.SurveyQualification) *SurveyQualification {
	if q == nil {
		return nil
	}
	return &SurveyQualification{
		SurveyID:    q.SurveyID,
		PanelistID:  q.PanelistID,
		IsQualified: q.IsQualified,
		Reason:      q.Reason,
		EvaluatedAt: q.EvaluatedAt,
	}
}

func toServiceQualification(q *SurveyQualification) *services.SurveyQualification {
	if q == nil {
		return nil
	}
	return &services.SurveyQualification{
		SurveyID:    q.SurveyID,
		PanelistID:  q.PanelistID,
		IsQualified: q.IsQualified,
		Reason:      q.Reason,
		EvaluatedAt: q.EvaluatedAt,
	}
}

func toServiceContest(c *Contest) *services.Contest {
	if c == nil {
		return nil
	}
	return &services.Contest{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		PrizePoints: c.PrizePoints,
		Status:      c.Status,
		InviteType:  c.InviteType,
		InvitedIDs:  c.InvitedIDs,
		CreatedAt:   c.CreatedAt,
	}
}

func fromServiceContest(c *services.Contest) *Contest {
	if c == nil {
		return nil
	}
	return &Contest{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		PrizePoints: c.PrizePoints,
		Status:      c.Status,
		InviteType:  c.InviteType,
		InvitedIDs:  c.InvitedIDs,
		CreatedAt:   c.CreatedAt,
	}
}

func toServiceParticipation(p *ContestParticipation) *services.ContestParticipation {
	if p == nil {
		return nil
	}
	return &services.ContestParticipation{
		ContestID:    p.ContestID,
		PanelistID:   p.PanelistID,
		Rank:         p.Rank,
		PointsEarned: p.PointsEarned,
		PrizeAwarded: p.PrizeAwarded,
		JoinedAt:     p.JoinedAt,
	}
}

func fromServiceParticipation(p *services.ContestParticipation) *ContestParticipation {
	if p == nil {
		return nil
	}
	return &ContestParticipation{
		ContestID:    p.ContestID,
		PanelistID:   p.PanelistID,
		Rank:         p.Rank,
		PointsEarned: p.PointsEarned,
		PrizeAwarded: p.PrizeAwarded,
		JoinedAt:     p.JoinedAt,
	}
}

func toServiceOffer(o *MerchantOffer) *services.MerchantOffer {
	if o == nil {
		return nil
	}
	return &services.MerchantOffer{
		ID:         o.ID,
		Merchant:   o.Merchant,
		Title:      o.Title,
		PointsCost: o.PointsCost,
		IsActive:   o.IsActive,
		CreatedAt:  o.CreatedAt,
	}
}

func fromServiceOffer(o *services.MerchantOffer) *MerchantOffer {
	if o == nil {
		return nil
	}
	return &MerchantOffer{
		ID:         o.ID,
		Merchant:   o.Merchant,
		Title:      o.Title,
		PointsCost: o.PointsCost,
		IsActive:   o.IsActive,
		CreatedAt:  o.CreatedAt,
	}
}

func fromServicePointsEntry(e *services.PointsEntry) *PointsEntry {
	if e == nil {
		return nil
	}
	return &PointsEntry{
		ID:         e.ID,
		PanelistID: e.PanelistID,
		Points:     e.Points,
		Kind:       e.Kind,
		RefID:      e.RefID,
		EarnedAt:   e.EarnedAt,
	}
}

func toServiceScanTask(t *ScanTask) *services.ScanTask {
	if t == nil {
		return nil
	}
	return &services.ScanTask{
		ID:          t.ID,
		PanelistID:  t.PanelistID,
		ImageKey:    t.ImageKey,
		Points:      t.Points,
		Status:      t.Status,
		SubmittedAt: t.SubmittedAt,
		ReviewedAt:  t.ReviewedAt,
		ReviewedBy:  t.ReviewedBy,
	}
}

func fromServiceScanTask(t *services.ScanTask) *ScanTask {
	if t == nil {
		return nil
	}
	return &ScanTask{
		ID:          t.ID,
		PanelistID:  t.PanelistID,
		ImageKey:    t.ImageKey,
		Points:      t.Points,
		Status:      t.Status,
		SubmittedAt: t.SubmittedAt,
		ReviewedAt:  t.ReviewedAt,
		ReviewedBy:  t.ReviewedBy,
	}
}

func toServiceUser(u *User) *services.User {
	if u == nil {
		return nil
	}
	return &services.User{
		ID:         u.ID,
		Email:      u.Email,
		PassHash:   u.PassHash,
		Role:       u.Role,
		PanelistID: u.PanelistID,
		CreatedAt:  u.CreatedAt,
	}
}

func fromServiceUser(u *services.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:         u.ID,
		Email:      u.Email,
		PassHash:   u.PassHash,
		Role:       u.Role,
		PanelistID: u.PanelistID,
		CreatedAt:  u.CreatedAt,
	}
}

func toStoreActivity(e services.ActivityEntry) ActivityEntry {
	return ActivityEntry{Time: e.Time, Actor: e.Actor, Action: e.Action, Target: e.Target, Note: e.Note}
}
