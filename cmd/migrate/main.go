package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// migrate applies the schema and the funding-stats trigger. Statements are
// idempotent so the command can run on every deploy.
var statements = []string{
	`create extension if not exists pgcrypto`,

	`create table if not exists schools (
		id uuid primary key default gen_random_uuid(),
		user_id uuid not null unique,
		school_name text not null,
		location text,
		logo_url text,
		created_at timestamptz not null default now()
	)`,

	`create table if not exists alumni_users (
		id uuid primary key default gen_random_uuid(),
		user_id uuid not null unique,
		full_name text not null,
		email text not null,
		school_id uuid references schools(id),
		school_name text,
		niches text[] not null default '{}',
		created_at timestamptz not null default now()
	)`,

	`create table if not exists projects (
		id uuid primary key default gen_random_uuid(),
		school_id uuid not null references schools(id),
		title text not null,
		description text not null default '',
		overview text,
		motivation text,
		objectives text,
		scope text,
		category text[] not null default '{}',
		target_amount bigint,
		current_amount bigint not null default 0,
		backers_count int not null default 0,
		status text not null default 'draft',
		days_remaining int,
		created_at timestamptz not null default now(),
		updated_at timestamptz not null default now(),
		constraint projects_status_check
			check (status in ('draft', 'active', 'funded', 'closed'))
	)`,

	`create index if not exists projects_status_created_idx
		on projects (status, created_at desc)`,

	`create table if not exists alumni_donations (
		id uuid primary key default gen_random_uuid(),
		alumni_user_id uuid not null references alumni_users(id),
		project_id uuid not null references projects(id),
		amount bigint not null check (amount > 0),
		currency text not null default 'GHS',
		status text not null default 'pending',
		is_anonymous boolean not null default false,
		payment_provider text,
		payment_reference text not null unique,
		receipt_number text,
		created_at timestamptz not null default now(),
		constraint alumni_donations_status_check
			check (status in ('pending', 'completed', 'completed_demo', 'failed'))
	)`,

	`create index if not exists alumni_donations_project_idx
		on alumni_donations (project_id, status)`,

	// Legacy ledger source. Predates the platform: whole-cedi amounts, a
	// free-text donor reference that is often null, and state markers
	// instead of statuses.
	`create table if not exists donation_history (
		id uuid primary key default gen_random_uuid(),
		project_id uuid not null references projects(id),
		alumni_ref text,
		amount_cedis numeric not null,
		state text not null default 'settled',
		recorded_at timestamptz not null default now()
	)`,

	`create table if not exists project_updates (
		id uuid primary key default gen_random_uuid(),
		project_id uuid not null references projects(id),
		school_id uuid not null references schools(id),
		title text not null,
		message text not null,
		created_at timestamptz not null default now()
	)`,

	`create table if not exists alumni_notifications (
		id uuid primary key default gen_random_uuid(),
		alumni_user_id uuid not null references alumni_users(id),
		project_id uuid references projects(id),
		type text not null default 'general',
		title text not null,
		message text not null default '',
		is_read boolean not null default false,
		metadata jsonb not null default '{}',
		created_at timestamptz not null default now()
	)`,

	`create index if not exists alumni_notifications_recipient_idx
		on alumni_notifications (alumni_user_id, created_at desc)`,

	`create table if not exists alumni_followed_schools (
		alumni_user_id uuid not null references alumni_users(id),
		school_id uuid not null references schools(id),
		created_at timestamptz not null default now(),
		primary key (alumni_user_id, school_id)
	)`,

	`create table if not exists alumni_bookmarks (
		alumni_user_id uuid not null references alumni_users(id),
		project_id uuid not null references projects(id),
		created_at timestamptz not null default now(),
		primary key (alumni_user_id, project_id)
	)`,

	`create table if not exists payment_reconciliation (
		id uuid primary key default gen_random_uuid(),
		alumni_user_id uuid not null,
		project_id uuid not null,
		amount bigint not null,
		currency text not null default 'GHS',
		is_anonymous boolean not null default false,
		payment_provider text,
		payment_reference text not null unique,
		receipt_number text,
		attempts int not null default 0,
		last_error text,
		resolved_at timestamptz,
		created_at timestamptz not null default now()
	)`,

	`create table if not exists service_credentials (
		provider text primary key,
		secret text not null,
		updated_at timestamptz not null default now()
	)`,

	// Safety net behind the application-level refresh: any insert or
	// status change on alumni_donations re-sums the owning project's cache
	// columns from authoritative rows. Pending rows back live headroom
	// reservations, so they stay in the amount sum; backers_count mirrors
	// the ledger's donor grouping: distinct completed donors, distinct
	// legacy donor references, and one per reference-less legacy row.
	`create or replace function update_project_funding_stats() returns trigger as $fn$
	begin
		update projects p
		set current_amount = coalesce((
				select sum(d.amount)
				from alumni_donations d
				where d.project_id = p.id
				  and d.status in ('pending', 'completed', 'completed_demo')
			), 0) + coalesce((
				select sum((h.amount_cedis * 100)::bigint)
				from donation_history h
				where h.project_id = p.id
				  and h.state = 'settled'
			), 0),
			backers_count = coalesce((
				select count(distinct d.alumni_user_id)
				from alumni_donations d
				where d.project_id = p.id
				  and d.status in ('completed', 'completed_demo')
			), 0) + coalesce((
				select count(distinct h.alumni_ref)
				from donation_history h
				where h.project_id = p.id
				  and h.state = 'settled'
				  and h.alumni_ref is not null
			), 0) + coalesce((
				select count(*)
				from donation_history h
				where h.project_id = p.id
				  and h.state = 'settled'
				  and h.alumni_ref is null
			), 0),
			updated_at = now()
		where p.id = coalesce(new.project_id, old.project_id);
		return null;
	end;
	$fn$ language plpgsql`,

	`drop trigger if exists alumni_donations_funding_stats on alumni_donations`,

	`create trigger alumni_donations_funding_stats
		after insert or update of status on alumni_donations
		for each row execute function update_project_funding_stats()`,
}

func main() {
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "ping database: %v\n", err)
		os.Exit(1)
	}

	for i, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			fmt.Fprintf(os.Stderr, "statement %d failed: %v\n", i+1, err)
			os.Exit(1)
		}
	}
	fmt.Printf("applied %d statements\n", len(statements))
}
