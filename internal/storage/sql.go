package storage

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions
(
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time  DATETIME NOT NULL,
    kind        TEXT     NOT NULL,
    description TEXT     NOT NULL,
    config      TEXT
);

CREATE TABLE IF NOT EXISTS runs
(
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id      INTEGER NOT NULL REFERENCES sessions (id),
    run_id          TEXT    NOT NULL UNIQUE,
    label           TEXT    NOT NULL,
    parameter       REAL,
    structure       TEXT    NOT NULL,
    polarization    TEXT    NOT NULL,
    incidence_angle REAL    NOT NULL,
    frequency_start REAL    NOT NULL,
    frequency_end   REAL    NOT NULL,
    num_samples     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS samples
(
    run_id        INTEGER NOT NULL REFERENCES runs (id),
    frequency     REAL    NOT NULL,
    transmittance REAL    NOT NULL,
    reflectance   REAL    NOT NULL
);`

	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_runs_session_id ON runs (session_id);
CREATE INDEX IF NOT EXISTS idx_samples_run_id_frequency ON samples (run_id, frequency);`

	insertSessionSQL = `
INSERT INTO sessions (
                      start_time, 
                      kind, 
                      description, 
                      config) 
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSessionSQL = `
SELECT 
    id, 
    start_time, 
    kind, 
    description, 
    config 
FROM sessions 
WHERE 
    id = ?`

	selectSessionsSQL = `
SELECT 
    id, 
    start_time, 
    kind, 
    description, 
    config 
FROM sessions
ORDER BY start_time, id`

	insertRunSQL = `
INSERT INTO runs (session_id,
                  run_id,
                  label,
                  parameter,
                  structure,
                  polarization,
                  incidence_angle,
                  frequency_start,
                  frequency_end,
                  num_samples)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRunsSQL = `
SELECT 
    id,
    session_id,
    run_id,
    label,
    parameter,
    structure,
    polarization,
    incidence_angle,
    frequency_start,
    frequency_end,
    num_samples
FROM runs
WHERE 
    session_id = ?
ORDER BY id`

	insertSamplesSQL = `
INSERT INTO samples (run_id,
                     frequency,
                     transmittance,
                     reflectance)
VALUES `

	selectFilterValuesSQL = `
SELECT 
    MIN(frequency_start), 
    MAX(frequency_end) 
FROM runs 
WHERE 
    session_id = ?`

	selectSamplesSQL = `
SELECT 
    s.run_id,
    s.frequency,
    s.transmittance,
    s.reflectance
FROM samples s
    INNER JOIN runs r ON r.id = s.run_id
WHERE 
    r.session_id = ?
    AND s.frequency BETWEEN ? AND ?
ORDER BY s.run_id, s.frequency`
)
