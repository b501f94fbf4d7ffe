package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Planning tables only. organizations and users belong to the main
// application schema and are referenced, not created, here.
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'certification_status') THEN
			CREATE TYPE certification_status AS ENUM ('ISSUED', 'PENDING_APPROVAL', 'APPROVED', 'REJECTED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS materials (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		name TEXT NOT NULL,
		unit VARCHAR(16) NOT NULL,
		unit_cost NUMERIC(18,4) NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS tools (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		name TEXT NOT NULL,
		hourly_cost NUMERIC(18,4) NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS labor_categories (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		base_hourly_rate NUMERIC(18,4) NOT NULL DEFAULT 0,
		social_charges_pct NUMERIC(5,2) NOT NULL DEFAULT 0,
		insurance_pct NUMERIC(5,2) NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS crews (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS crew_members (
		crew_id UUID NOT NULL REFERENCES crews(id) ON DELETE CASCADE,
		labor_category_id UUID NOT NULL REFERENCES labor_categories(id),
		count NUMERIC(8,2) NOT NULL DEFAULT 1,
		participation_pct NUMERIC(5,2) NOT NULL DEFAULT 100,
		PRIMARY KEY (crew_id, labor_category_id)
	);`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		name TEXT NOT NULL,
		unit VARCHAR(16) NOT NULL,
		daily_yield NUMERIC(18,4) NOT NULL DEFAULT 0,
		man_hours_per_unit NUMERIC(18,4) NOT NULL DEFAULT 0,
		manual_labor_cost NUMERIC(18,4) NOT NULL DEFAULT 0,
		fixed_cost NUMERIC(18,4) NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS task_materials (
		task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		material_id UUID NOT NULL,
		net_quantity NUMERIC(18,4) NOT NULL DEFAULT 0,
		waste_pct NUMERIC(5,2) NOT NULL DEFAULT 0,
		PRIMARY KEY (task_id, material_id)
	);`,
	`CREATE TABLE IF NOT EXISTS task_tools (
		task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		tool_id UUID NOT NULL,
		hours_per_unit NUMERIC(18,4) NOT NULL DEFAULT 0,
		PRIMARY KEY (task_id, tool_id)
	);`,
	`CREATE TABLE IF NOT EXISTS task_crews (
		task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		crew_id UUID NOT NULL,
		crews NUMERIC(8,2) NOT NULL DEFAULT 1,
		PRIMARY KEY (task_id, crew_id)
	);`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		start_date DATE NOT NULL,
		workday_hours NUMERIC(4,1) NOT NULL DEFAULT 9,
		working_weekdays VARCHAR(16) NOT NULL DEFAULT '1,2,3,4,5',
		created_by_org_id UUID NOT NULL REFERENCES organizations(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS project_holidays (
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		holiday_date DATE NOT NULL,
		PRIMARY KEY (project_id, holiday_date)
	);`,
	`CREATE TABLE IF NOT EXISTS budget_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		task_id UUID NOT NULL REFERENCES tasks(id),
		chapter TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		quantity NUMERIC(18,4) NOT NULL DEFAULT 0,
		start_override DATE,
		manual_duration INTEGER NOT NULL DEFAULT 0,
		crews_assigned INTEGER NOT NULL DEFAULT 1,
		efficiency_factor NUMERIC(5,2) NOT NULL DEFAULT 1,
		allowance_pct NUMERIC(5,2) NOT NULL DEFAULT 0,
		progress_pct NUMERIC(5,2) NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0,
		start_date DATE,
		end_date DATE,
		duration_days INTEGER,
		scheduled_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_budget_items_project_id ON budget_items (project_id);`,
	`CREATE TABLE IF NOT EXISTS budget_item_dependencies (
		item_id UUID NOT NULL REFERENCES budget_items(id) ON DELETE CASCADE,
		predecessor_id UUID NOT NULL REFERENCES budget_items(id) ON DELETE CASCADE,
		dep_type VARCHAR(2) NOT NULL DEFAULT 'FS',
		lag_days INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (item_id, predecessor_id)
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id),
		subcontractor_id UUID NOT NULL REFERENCES organizations(id),
		customer_org_id UUID NOT NULL REFERENCES organizations(id),
		name TEXT NOT NULL,
		retention_pct NUMERIC(5,2) NOT NULL DEFAULT 0,
		start_at DATE NOT NULL,
		end_at DATE NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS contract_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		budget_item_id UUID NOT NULL REFERENCES budget_items(id),
		description TEXT NOT NULL DEFAULT '',
		quantity NUMERIC(18,4) NOT NULL DEFAULT 0,
		agreed_unit_price NUMERIC(18,4) NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS certifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		number VARCHAR(64) NOT NULL,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		gross_amount NUMERIC(18,2) NOT NULL,
		retention_pct NUMERIC(5,2) NOT NULL,
		retention_amount NUMERIC(18,2) NOT NULL,
		net_amount NUMERIC(18,2) NOT NULL,
		status certification_status NOT NULL DEFAULT 'ISSUED',
		rejection_reason TEXT,
		approved_by_org_id UUID REFERENCES organizations(id),
		approved_by_user_id UUID REFERENCES users(id),
		approved_at TIMESTAMPTZ,
		created_by_org_id UUID NOT NULL REFERENCES organizations(id),
		created_by_user_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_certification_number ON certifications (number);`,
	`CREATE INDEX IF NOT EXISTS idx_certifications_contract_id ON certifications (contract_id);`,
	`CREATE TABLE IF NOT EXISTS certification_lines (
		certification_id UUID NOT NULL REFERENCES certifications(id) ON DELETE CASCADE,
		contract_item_id UUID NOT NULL REFERENCES contract_items(id),
		percent_this_period NUMERIC(6,3) NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		PRIMARY KEY (certification_id, contract_item_id)
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
