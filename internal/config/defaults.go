package config

func applyDefaults(cfg *Config) {
	d := &cfg.Database
	if d.PollIntervalSeconds <= 0 {
		d.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if d.ConnectionPoolSize <= 0 {
		d.ConnectionPoolSize = DefaultConnectionPoolSize
	}
	if d.MaxConcurrentBatches <= 0 {
		d.MaxConcurrentBatches = DefaultMaxConcurrentBatches
	}
	if d.DocumentBatchSize <= 0 {
		d.DocumentBatchSize = DefaultDocumentBatchSize
	}
	if d.UpsertBatchSize <= 0 {
		d.UpsertBatchSize = DefaultUpsertBatchSize
	}
	if d.DeleteBatchSize <= 0 {
		d.DeleteBatchSize = DefaultDeleteBatchSize
	}
	if d.MaxTextLength <= 0 {
		d.MaxTextLength = DefaultMaxTextLength
	}
	if d.MaxFieldsPerDocument <= 0 {
		d.MaxFieldsPerDocument = DefaultMaxFields
	}
	if d.MaxDocumentBytes <= 0 {
		d.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if d.IndexSettleCooldownMs <= 0 {
		d.IndexSettleCooldownMs = DefaultIndexSettleCooldownMs
	}
	if d.SettingsCooldownMs <= 0 {
		d.SettingsCooldownMs = DefaultSettingsCooldownMs
	}
	if d.BatchCooldownMs <= 0 {
		d.BatchCooldownMs = DefaultBatchCooldownMs
	}

	for i := range d.Tables {
		if d.Tables[i].IndexName == "" {
			d.Tables[i].IndexName = d.Tables[i].Name
		}
	}
}
