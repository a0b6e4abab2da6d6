package api

import "context"

// authenticate resolves the userId header to a live user and returns its id.
// A missing header or an unknown user yields 401.
func (s *Server) authenticate(ctx context.Context, userID string) (string, error) {
	user, err := s.services.Users.Authenticate(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
