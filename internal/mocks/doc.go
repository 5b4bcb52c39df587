// Package mocks provides shared test doubles for service interfaces.
//
// Each mock has a function field per method. When the field is nil the mock
// returns its default fields instead:
//
//	jwt := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{LearnerID: learnerID, TokenType: auth.AccessTokenType}, nil
//	    },
//	}
package mocks
