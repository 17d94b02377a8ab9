package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create settings table
			CREATE TABLE settings (
				key VARCHAR(255) PRIMARY KEY,
				value BYTEA NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);
		`,
	}
}
