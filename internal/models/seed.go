package models

// SeedDefaultData creates default roles and system configs if not present.
// The default admin account is created separately once the password hasher
// is configured (see services.UserService.CreateAdminIfNotExists).
func SeedDefaultData() error {
	defaultRoles := []Role{
		{Name: "admin", Description: "Full administrative access", Permissions: `["*"]`, IsSystem: true},
		{Name: "manager", Description: "Manage users and settings", Permissions: `["users:read","users:write","settings:read"]`, IsSystem: true},
		{Name: "user", Description: "Regular user", Permissions: `["profile:read","profile:write"]`, IsSystem: true},
	}
	for _, role := range defaultRoles {
		var count int64
		DB.Model(&Role{}).Where("name = ?", role.Name).Count(&count)
		if count == 0 {
			if err := DB.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	defaultConfigs := []SystemConfig{
		{Key: "site_name", Value: "AdminBase", Type: "string", Group: "general", Label: "Site name"},
		{Key: "site_url", Value: "http://localhost:8080", Type: "string", Group: "general", Label: "Public site URL"},
		{Key: "email_enabled", Value: "false", Type: "bool", Group: "email", Label: "Enable email sending"},
		{Key: "email_host", Value: "", Type: "string", Group: "email", Label: "SMTP host"},
		{Key: "email_port", Value: "587", Type: "int", Group: "email", Label: "SMTP port"},
		{Key: "email_username", Value: "", Type: "string", Group: "email", Label: "SMTP username"},
		{Key: "email_password", Value: "", Type: "string", Group: "email", Label: "SMTP password"},
		{Key: "email_from", Value: "", Type: "string", Group: "email", Label: "From address"},
		{Key: "email_use_tls", Value: "true", Type: "bool", Group: "email", Label: "Use TLS"},
		{Key: "log_retention_days", Value: "90", Type: "int", Group: "logging", Label: "System log retention (days)"},
	}
	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("`key` = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
