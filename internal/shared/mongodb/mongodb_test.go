package mongodb

import (
	"testing"
)

func TestValidateMongoURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{
			name:    "valid mongodb URI",
			uri:     "mongodb://localhost:27017",
			wantErr: false,
		},
		{
			name:    "valid mongodb+srv URI",
			uri:     "mongodb+srv://cluster.mongodb.net",
			wantErr: false,
		},
		{
			name:    "empty URI",
			uri:     "",
			wantErr: true,
		},
		{
			name:    "invalid scheme",
			uri:     "http://localhost:27017",
			wantErr: true,
		},
		{
			name:    "missing host",
			uri:     "mongodb://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMongoURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateMongoURI() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		dbName  string
		wantErr bool
	}{
		{
			name:    "valid name",
			dbName:  "crm_automation",
			wantErr: false,
		},
		{
			name:    "empty name",
			dbName:  "",
			wantErr: true,
		},
		{
			name:    "name with slash",
			dbName:  "crm/automation",
			wantErr: true,
		},
		{
			name:    "name with space",
			dbName:  "crm automation",
			wantErr: true,
		},
		{
			name:    "name with dollar",
			dbName:  "crm$automation",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDatabaseName(tt.dbName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDatabaseName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
