package rail

// ClassInfo holds the fare and seat availability for one travel class.
type ClassInfo struct {
	Fare           int `json:"fare"`
	AvailableSeats int `json:"availableSeats"`
}

// Train represents a train as returned by the reservation API.
type Train struct {
	ID          string               `json:"_id"`
	TrainNumber string               `json:"trainNumber"`
	TrainName   string               `json:"trainName"`
	Source      string               `json:"source"`
	Destination string               `json:"destination"`
	Duration    string               `json:"duration"`
	Classes     map[string]ClassInfo `json:"classes"`
}

// Passenger is one traveller on a booking. Age is carried as entered;
// the backend owns validation.
type Passenger struct {
	Name   string `json:"name"`
	Age    string `json:"age"`
	Gender string `json:"gender"`
}

// Booking statuses issued by the backend.
const (
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
	StatusWaiting   = "Waiting"
)

// Booking is a server-issued reservation, keyed by PNR.
type Booking struct {
	PNR         string      `json:"PNR"`
	TrainName   string      `json:"trainName"`
	TrainNumber string      `json:"trainNumber"`
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	TravelDate  string      `json:"travelDate"`
	Class       string      `json:"class"`
	Passengers  []Passenger `json:"passengers"`
	TotalFare   int         `json:"totalFare"`
	Status      string      `json:"status"`
}

// User is the authenticated identity returned by the auth endpoints.
type User struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest obtains a session credential.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the bearer token and user identity issued on
// login or registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CreateBookingRequest is the payload for POST /bookings.
type CreateBookingRequest struct {
	TrainID    string      `json:"trainId"`
	TravelDate string      `json:"travelDate"`
	Class      string      `json:"class"`
	Passengers []Passenger `json:"passengers"`
}

type searchResponse struct {
	Trains []Train `json:"trains"`
}

type trainResponse struct {
	Train Train `json:"train"`
}

type trainsResponse struct {
	Trains []Train `json:"trains"`
}

type bookingResponse struct {
	Booking Booking `json:"booking"`
}

type bookingsResponse struct {
	Bookings []Booking `json:"bookings"`
}

type profileResponse struct {
	User User `json:"user"`
}

type errorResponse struct {
	Message string `json:"message"`
}
