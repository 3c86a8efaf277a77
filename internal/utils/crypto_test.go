package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastHasher keeps the suite quick; the format is the same as the default
func fastHasher() *PasswordHasher {
	return NewPasswordHasher(PasswordHashConfig{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("contraseña-segura")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))
	assert.Len(t, strings.Split(hash, "$"), 6)

	hash2, err := HashPassword("contraseña-segura")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := fastHasher().Hash(password)
	require.NoError(t, err)

	tests := []struct {
		name           string
		password       string
		hash           string
		expectedResult bool
		expectedError  bool
	}{
		{
			name:           "correct password",
			password:       password,
			hash:           hash,
			expectedResult: true,
		},
		{
			name:     "incorrect password",
			password: "wrongpassword",
			hash:     hash,
		},
		{
			name:     "empty password",
			password: "",
			hash:     hash,
		},
		{
			name:          "invalid hash format",
			password:      password,
			hash:          "invalid-hash",
			expectedError: true,
		},
		{
			name:          "empty hash",
			password:      password,
			hash:          "",
			expectedError: true,
		},
		{
			name:          "malformed hash - missing parts",
			password:      password,
			hash:          "$argon2id$v=19$m=65536",
			expectedError: true,
		},
		{
			name:          "malformed hash - invalid base64",
			password:      password,
			hash:          "$argon2id$v=19$m=65536,t=3,p=2$invalid-base64$invalid-base64",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the default hasher must honour the parameters stored in the hash
			result, err := VerifyPassword(tt.password, tt.hash)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedResult, result)
		})
	}
}

func TestPasswordHashAndVerifyIntegration(t *testing.T) {
	hasher := fastHasher()
	passwords := []string{
		"simple",
		"password123",
		"MyC0mpl3x!P@ssw0rd",
		"!@#$%^&*()_+-=[]{}|;':\",./<>?",
		"contraseña123",
		strings.Repeat("a", 128),
	}

	for i, password := range passwords {
		password := password
		t.Run(passwords[i][:min(len(password), 10)], func(t *testing.T) {
			hash, err := hasher.Hash(password)
			require.NoError(t, err)

			valid, err := hasher.Verify(password, hash)
			require.NoError(t, err)
			assert.True(t, valid)

			valid, err = hasher.Verify(password+"wrong", hash)
			require.NoError(t, err)
			assert.False(t, valid)
		})
	}
}

func TestParseHash(t *testing.T) {
	validHash := "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"

	tests := []struct {
		name          string
		hash          string
		expectedError bool
	}{
		{name: "valid hash", hash: validHash},
		{name: "invalid format - not argon2id", hash: "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA", expectedError: true},
		{name: "invalid format - missing parts", hash: "$argon2id$v=19$m=65536", expectedError: true},
		{name: "invalid format - wrong version", hash: "$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA", expectedError: true},
		{name: "invalid parameters", hash: "$argon2id$v=19$memory$c2FsdA$aGFzaA", expectedError: true},
		{name: "invalid base64 salt", hash: "$argon2id$v=19$m=65536,t=3,p=2$invalid-base64$aGFzaA", expectedError: true},
		{name: "invalid base64 hash", hash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$invalid-base64", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, salt, hashBytes, err := parseHash(tt.hash)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, config)
				assert.Nil(t, salt)
				assert.Nil(t, hashBytes)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint32(65536), config.Memory)
			assert.Equal(t, uint32(3), config.Iterations)
			assert.Equal(t, uint8(2), config.Parallelism)
			assert.Equal(t, []byte("salt"), salt)
			assert.Equal(t, []byte("hash"), hashBytes)
		})
	}
}

func TestDefaultPasswordHashConfig(t *testing.T) {
	config := DefaultPasswordHashConfig()

	assert.Equal(t, uint32(64*1024), config.Memory)
	assert.Equal(t, uint32(3), config.Iterations)
	assert.Equal(t, uint8(2), config.Parallelism)
	assert.Equal(t, uint32(16), config.SaltLength)
	assert.Equal(t, uint32(32), config.KeyLength)
}
