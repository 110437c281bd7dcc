package sqlite

// Schema DDL. The database is rebuilt from the JSONL files on every Attach,
// so the schema carries no migrations.
const (
	createBoundaries = `CREATE TABLE boundaries (
    name TEXT PRIMARY KEY,
    attachment_plan TEXT NOT NULL,
    active INTEGER NOT NULL,
    extent TEXT
);`

	// component is '' for the base palette, otherwise the override character.
	createBoundaryColors = `CREATE TABLE boundary_colors (
    boundary_name TEXT NOT NULL,
    component TEXT NOT NULL,
    color_index INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (boundary_name, component, ordinal),
    FOREIGN KEY (boundary_name) REFERENCES boundaries(name) ON DELETE CASCADE
);`

	createPlans = `CREATE TABLE plans (
    name TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    elevation TEXT NOT NULL,
    loaded INTEGER NOT NULL,
    scale REAL NOT NULL,
    rotation REAL NOT NULL,
    insert_x REAL NOT NULL,
    insert_y REAL NOT NULL,
    insert_z REAL NOT NULL,
    properties TEXT,
    host_ref TEXT NOT NULL
);`

	createAssignments = `CREATE TABLE assignments (
    color_index INTEGER PRIMARY KEY,
    material_name TEXT NOT NULL,
    measurement_types TEXT NOT NULL,
    unit_cost TEXT NOT NULL,
    cell TEXT NOT NULL,
    formula TEXT NOT NULL,
    description TEXT NOT NULL,
    active INTEGER NOT NULL,
    true_color TEXT
);`
)

const (
	idxBoundariesPlan      = `CREATE INDEX idx_boundaries_plan ON boundaries(attachment_plan);`
	idxBoundaryColorsColor = `CREATE INDEX idx_boundary_colors_color ON boundary_colors(color_index);`
	idxAssignmentsCell     = `CREATE INDEX idx_assignments_cell ON assignments(cell);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createBoundaries,
	createBoundaryColors,
	createPlans,
	createAssignments,
}

var indexDDL = []string{
	idxBoundariesPlan,
	idxBoundaryColorsColor,
	idxAssignmentsCell,
}
