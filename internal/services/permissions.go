package services

// Roles carried in auth token claims.
const (
	RolePanelist    = "panelist"
	RoleSurveyAdmin = "survey_admin"
	RoleSystemAdmin = "system_admin"
)

// Actions gating mutating endpoints.
const (
	PermCreateSurveys        = "create_surveys"
	PermManageQualifications = "manage_qualifications"
	PermManageContests       = "manage_contests"
	PermManageOffers         = "manage_offers"
	PermManagePanelists      = "manage_panelists"
	PermReviewScans          = "review_scans"
	PermViewActivity         = "view_activity"
)

var rolePermissions = map[string]map[string]bool{
	RoleSystemAdmin: {
		PermCreateSurveys:        true,
		PermManageQualifications: true,
		PermManageContests:       true,
		PermManageOffers:         true,
		PermManagePanelists:      true,
		PermReviewScans:          true,
		PermViewActivity:         true,
	},
	RoleSurveyAdmin: {
		PermCreateSurveys:        true,
		PermManageQualifications: true,
		PermManageContests:       true,
		PermViewActivity:         true,
	},
	RolePanelist: {},
}

// HasPermission is the single capability lookup backing every mutating
// endpoint. Unknown roles hold no permissions.
func HasPermission(role, action string) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[action]
}
