package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'request_status') THEN
			CREATE TYPE request_status AS ENUM ('pending', 'assigned', 'accepted', 'denied', 'en_route', 'in_progress', 'completed', 'cancelled');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'app_role') THEN
			CREATE TYPE app_role AS ENUM ('customer', 'provider', 'admin');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		role app_role NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		full_name VARCHAR(255) NOT NULL,
		phone_number VARCHAR(32),
		location TEXT,
		bio TEXT,
		is_available BOOLEAN NOT NULL DEFAULT FALSE,
		current_lat DOUBLE PRECISION,
		current_lng DOUBLE PRECISION,
		location_updated_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_is_available ON profiles (is_available);`,
	`CREATE TABLE IF NOT EXISTS service_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tracking_code VARCHAR(16) NOT NULL UNIQUE,
		customer_id UUID REFERENCES users(id) ON DELETE SET NULL,
		provider_id UUID REFERENCES users(id) ON DELETE SET NULL,
		assigned_by UUID REFERENCES users(id) ON DELETE SET NULL,
		service_type VARCHAR(32) NOT NULL,
		description TEXT,
		location TEXT NOT NULL,
		vehicle_make VARCHAR(64),
		vehicle_model VARCHAR(64),
		vehicle_year INTEGER,
		vehicle_plate VARCHAR(32),
		vehicle_image_url TEXT,
		fuel_type VARCHAR(32),
		fuel_amount DOUBLE PRECISION,
		customer_lat DOUBLE PRECISION,
		customer_lng DOUBLE PRECISION,
		provider_lat DOUBLE PRECISION,
		provider_lng DOUBLE PRECISION,
		phone_number VARCHAR(32),
		status request_status NOT NULL DEFAULT 'pending',
		version INTEGER NOT NULL DEFAULT 1,
		assigned_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_customer_id ON service_requests (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_provider_id ON service_requests (provider_id);`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_status ON service_requests (status);`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_phone_number ON service_requests (phone_number);`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		service_request_id UUID NOT NULL REFERENCES service_requests(id) ON DELETE CASCADE,
		amount NUMERIC(12,2) NOT NULL,
		provider_percentage NUMERIC(5,2) NOT NULL,
		provider_amount NUMERIC(12,2) NOT NULL,
		platform_amount NUMERIC(12,2) NOT NULL,
		transaction_type VARCHAR(32) NOT NULL,
		payment_method VARCHAR(32) NOT NULL,
		confirmed_by UUID NOT NULL,
		confirmed_at TIMESTAMPTZ NOT NULL,
		reference_number VARCHAR(64),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DROP INDEX IF EXISTS idx_transactions_service_request_id;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_request_unique ON transactions (service_request_id);`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_confirmed_at ON transactions (confirmed_at);`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		service_request_id UUID NOT NULL REFERENCES service_requests(id) ON DELETE CASCADE,
		customer_id UUID NOT NULL,
		provider_id UUID NOT NULL,
		rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
		review TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_request_customer ON ratings (service_request_id, customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_provider_id ON ratings (provider_id);`,
	`CREATE TABLE IF NOT EXISTS location_pings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		provider_id UUID NOT NULL,
		service_request_id UUID REFERENCES service_requests(id) ON DELETE CASCADE,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_location_pings_provider_id ON location_pings (provider_id);`,
	`CREATE INDEX IF NOT EXISTS idx_location_pings_service_request_id ON location_pings (service_request_id);`,
	`CREATE INDEX IF NOT EXISTS idx_location_pings_recorded_at ON location_pings (recorded_at);`,
	`CREATE TABLE IF NOT EXISTS partnership_applications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone_number VARCHAR(32) NOT NULL,
		business_name VARCHAR(255),
		service_types TEXT,
		location TEXT,
		message TEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		admin_notes TEXT,
		reviewed_by UUID,
		reviewed_at TIMESTAMPTZ,
		created_user_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_partnership_applications_status ON partnership_applications (status);`,
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		subject VARCHAR(255),
		message TEXT NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'new',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contact_messages_status ON contact_messages (status);`,
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(128) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_by UUID,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS legal_documents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		doc_type VARCHAR(64) NOT NULL UNIQUE,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
}

// updatedAtTables get a set_updated_at trigger each.
var updatedAtTables = []string{
	"users",
	"profiles",
	"service_requests",
	"transactions",
	"ratings",
	"partnership_applications",
	"contact_messages",
	"legal_documents",
}

func triggerStatement(table string) string {
	return fmt.Sprintf(`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_%[1]s_updated_at') THEN
			CREATE TRIGGER trg_%[1]s_updated_at
				BEFORE UPDATE ON %[1]s
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`, table)
}

func runMigrations(db *gorm.DB) error {
	statements := append([]string{}, migrationStatements...)
	for _, table := range updatedAtTables {
		statements = append(statements, triggerStatement(table))
	}

	for i, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
