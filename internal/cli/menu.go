package cli

import (
	"context" // Context threaded into every engine call
	"errors"  // Sentinel error checks
	"fmt"     // Table and prompt printing
	"io"      // Reader/writer abstraction
	"math"    // Menu input bounds
	"time"    // Travel dates

	"railway_system/internal/auth"    // Authentication gate
	"railway_system/internal/backup"  // CSV backup sink
	"railway_system/internal/booking" // Reservation engine
	"railway_system/internal/domain"  // Importing domain models
	"railway_system/internal/trains"  // Train inventory service
)

// AppName is the banner title of the terminal application
const AppName = "Railway Management System"

// App is the interactive terminal front-end. It owns no business rules;
// everything goes through the services.
type App struct {
	auth   *auth.Service
	engine *booking.Engine
	trains *trains.Service
	backup *backup.Writer
	p      *prompter
	out    io.Writer
}

// NewApp wires the terminal front-end to the services and I/O streams
func NewApp(authSvc *auth.Service, engine *booking.Engine, trainSvc *trains.Service, bw *backup.Writer, in io.Reader, out io.Writer) *App {
	return &App{
		auth:   authSvc,
		engine: engine,
		trains: trainSvc,
		backup: bw,
		p:      newPrompter(in, out),
		out:    out,
	}
}

// Run drives the whole session: registration when the user store is
// empty, then a bounded-attempt login, then the main menu.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n\t\t============================================")
	fmt.Fprintf(a.out, "\t\t      WELCOME TO %s\n", AppName)
	fmt.Fprintln(a.out, "\t\t============================================")

	hasUsers, err := a.auth.HasUsers(ctx)
	if err != nil {
		return err
	}
	if !hasUsers {
		if err := a.registerNewUser(ctx); err != nil {
			return err
		}
	}
	id, ok := a.login(ctx)
	if !ok {
		return nil // Locked out
	}
	fmt.Fprintf(a.out, "\nWelcome, %s!\n", id.FullName)
	a.mainMenu(ctx, id)
	return nil
}

func (a *App) registerNewUser(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n=== NEW USER REGISTRATION ===")

	fullName := a.p.valid("Enter your full name: ", namePattern.MatchString, "Invalid name format")
	age := a.p.intInRange("Enter your age: ", 15, 120)
	phone := a.p.valid("Enter phone number (10 digits): ", phonePattern.MatchString, "Invalid phone number")
	nationalID := a.p.valid("Enter national ID (12 digits): ", nationalIDPattern.MatchString, "Invalid national ID")
	address := a.p.valid("Enter your address: ", notEmpty, "Address cannot be empty")
	pincode := a.p.valid("Enter pincode (6 digits): ", pincodePattern.MatchString, "Invalid pincode")
	username := a.p.valid("Choose a username: ", usernamePattern.MatchString, "Invalid username")
	password := a.p.valid("Choose a password (min 8 chars): ", func(s string) bool { return len(s) >= 8 }, "Password too short")

	user, err := a.auth.Register(ctx, auth.Profile{
		Username:   username,
		FullName:   fullName,
		Phone:      phone,
		NationalID: &nationalID,
		Address:    address,
		Pincode:    pincode,
		Age:        age,
	}, password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) || errors.Is(err, auth.ErrDuplicateNationalID) {
			fmt.Fprintf(a.out, "Registration failed: %v\n", err)
			return nil
		}
		return err
	}
	fmt.Fprintf(a.out, "\nRegistration successful! Your user ID is: %s\n", user.UserID)
	// Best-effort backup; a failure is logged, never fatal
	_ = a.backup.AppendUser(user)
	return nil
}

// login runs a bounded-attempt session; false means locked out
func (a *App) login(ctx context.Context) (*auth.Identity, bool) {
	fmt.Fprintln(a.out, "\n=== USER LOGIN ===")
	session := a.auth.NewSession()
	for {
		username := a.p.line("Username: ")
		password := a.p.line("Password: ")

		id, err := session.Authenticate(ctx, username, password)
		if err == nil {
			return id, true
		}
		if errors.Is(err, auth.ErrLockedOut) {
			fmt.Fprintln(a.out, "Maximum login attempts reached. Exiting...")
			return nil, false
		}
		fmt.Fprintf(a.out, "Invalid credentials. Attempts remaining: %d\n", session.Remaining())
	}
}

func (a *App) mainMenu(ctx context.Context, id *auth.Identity) {
	for {
		fmt.Fprintln(a.out, "\n=== MAIN MENU ===")
		fmt.Fprintf(a.out, "Logged in as: %s\n", id.FullName)
		fmt.Fprintln(a.out, "1. Train Management")
		fmt.Fprintln(a.out, "2. Reservation System")
		fmt.Fprintln(a.out, "3. User Profile")
		fmt.Fprintln(a.out, "4. Logout")

		switch a.p.intInRange("Enter your choice: ", 1, 4) {
		case 1:
			a.trainMenu(ctx)
		case 2:
			a.reservationMenu(ctx, id)
		case 3:
			a.profileMenu(ctx, id)
		case 4:
			fmt.Fprintf(a.out, "\nLogging out...\nThank you for using %s\n", AppName)
			return
		}
	}
}

func (a *App) trainMenu(ctx context.Context) {
	fmt.Fprintln(a.out, "\n=== TRAIN MANAGEMENT ===")
	fmt.Fprintln(a.out, "1. View All Trains")
	fmt.Fprintln(a.out, "2. Add New Train")
	fmt.Fprintln(a.out, "3. Update Train Details")
	fmt.Fprintln(a.out, "4. Remove Train")
	fmt.Fprintln(a.out, "5. Back to Main Menu")

	switch a.p.intInRange("Enter your choice: ", 1, 5) {
	case 1:
		a.displayAllTrains(ctx)
	case 2:
		a.addNewTrain(ctx)
	case 3:
		a.updateTrainDetails(ctx)
	case 4:
		a.removeTrain(ctx)
	case 5:
	}
}

func (a *App) displayAllTrains(ctx context.Context) {
	all, err := a.trains.List(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Failed to fetch trains: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "\n=== AVAILABLE TRAINS ===")
	border := "+---------------------+-----------+----------------+----------------+------------------------+----------------+"
	fmt.Fprintln(a.out, border)
	fmt.Fprintln(a.out, "| Train Name          | Train No  | Starting Point | Destination    | Specifications         | Seats Available|")
	fmt.Fprintln(a.out, border)
	for _, t := range all {
		fmt.Fprintf(a.out, "| %-19s | %-9d | %-14s | %-14s | %-22s | %-14d |\n",
			t.TrainName, t.TrainNo, t.StartingPoint, t.Destination, t.Specifications, t.SeatsAvailable)
	}
	fmt.Fprintln(a.out, border)
}

func (a *App) addNewTrain(ctx context.Context) {
	fmt.Fprintln(a.out, "\n=== ADD NEW TRAIN ===")
	name := a.p.valid("Train name: ", notEmpty, "Name cannot be empty")
	trainNo := a.p.intInRange("Train number: ", 1, math.MaxInt32)
	start := a.p.valid("Starting point: ", notEmpty, "Starting point cannot be empty")
	dest := a.p.valid("Destination: ", notEmpty, "Destination cannot be empty")
	seats := a.p.intInRange("Seats available: ", 1, math.MaxInt32)
	specs := a.p.line("Extra specifications (optional): ")

	err := a.trains.Add(ctx, domain.Train{
		TrainNo:        trainNo,
		TrainName:      name,
		StartingPoint:  start,
		Destination:    dest,
		Specifications: specs,
		SeatsAvailable: seats,
	})
	if err != nil {
		if errors.Is(err, trains.ErrDuplicateTrain) {
			fmt.Fprintln(a.out, "Error: Train number already exists!")
			return
		}
		fmt.Fprintf(a.out, "Failed to add train: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Train added successfully!")
}

func (a *App) updateTrainDetails(ctx context.Context) {
	trainNo := a.p.intInRange("Enter train number to update: ", 1, math.MaxInt32)
	t, err := a.trains.Get(ctx, trainNo)
	if err != nil {
		fmt.Fprintln(a.out, "Train not found!")
		return
	}
	fmt.Fprintln(a.out, "\nCurrent Train Details:")
	fmt.Fprintf(a.out, "1. Name: %s\n", t.TrainName)
	fmt.Fprintf(a.out, "2. Starting Point: %s\n", t.StartingPoint)
	fmt.Fprintf(a.out, "3. Destination: %s\n", t.Destination)
	fmt.Fprintf(a.out, "4. Seats Available: %d\n", t.SeatsAvailable)
	fmt.Fprintf(a.out, "5. Specifications: %s\n", t.Specifications)

	choice := a.p.intInRange("Which field to update (1-5, 0 to cancel)? ", 0, 5)
	if choice == 0 {
		return
	}
	if choice == 4 {
		seats := a.p.intInRange("New seats available: ", 0, math.MaxInt32)
		err = a.trains.SetSeats(ctx, trainNo, seats)
	} else {
		field := map[int]trains.TrainField{
			1: trains.FieldName,
			2: trains.FieldStartingPoint,
			3: trains.FieldDestination,
			5: trains.FieldSpecifications,
		}[choice]
		value := a.p.valid("New value: ", notEmpty, "Value cannot be empty")
		err = a.trains.UpdateField(ctx, trainNo, field, value)
	}
	if err != nil {
		fmt.Fprintf(a.out, "Failed to update train: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Train details updated successfully!")
}

func (a *App) removeTrain(ctx context.Context) {
	trainNo := a.p.intInRange("Enter train number to remove: ", 1, math.MaxInt32)
	err := a.trains.Remove(ctx, trainNo)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Train removed successfully!")
	case errors.Is(err, trains.ErrTrainNotFound):
		fmt.Fprintln(a.out, "Train not found!")
	case errors.Is(err, trains.ErrTrainInUse):
		fmt.Fprintln(a.out, "Train has active reservations. Cancel them first!")
	default:
		fmt.Fprintf(a.out, "Failed to remove train: %v\n", err)
	}
}

func (a *App) reservationMenu(ctx context.Context, id *auth.Identity) {
	fmt.Fprintln(a.out, "\n=== RESERVATION SYSTEM ===")
	fmt.Fprintln(a.out, "1. Make Reservation")
	fmt.Fprintln(a.out, "2. View My Reservations")
	fmt.Fprintln(a.out, "3. Cancel Reservation")
	fmt.Fprintln(a.out, "4. Back to Main Menu")

	switch a.p.intInRange("Enter your choice: ", 1, 4) {
	case 1:
		a.makeReservation(ctx, id)
	case 2:
		a.viewReservations(ctx, id)
	case 3:
		a.cancelReservation(ctx, id)
	case 4:
	}
}

func (a *App) makeReservation(ctx context.Context, id *auth.Identity) {
	a.displayAllTrains(ctx)
	trainNo := a.p.intInRange("Enter train number: ", 1, math.MaxInt32)

	t, err := a.trains.Get(ctx, trainNo)
	if err != nil {
		fmt.Fprintln(a.out, "Train not found!")
		return
	}
	if t.SeatsAvailable <= 0 {
		fmt.Fprintln(a.out, "No seats available on this train!")
		return
	}
	fmt.Fprintf(a.out, "Booking seat on: %s\n", t.TrainName)
	fmt.Fprintf(a.out, "Seats available: %d\n", t.SeatsAvailable)

	var berth domain.BerthType
	a.p.valid("Berth type (Lower/Upper/Middle/Side): ", func(s string) bool {
		b, err := domain.ParseBerth(s)
		if err != nil {
			return false
		}
		berth = b
		return true
	}, "Invalid berth type")
	meals := a.p.yesNo("Include meals (Y/N)? ")
	departure := a.p.date("Departure date (YYYY-MM-DD): ")

	_, err = a.engine.Book(ctx, booking.Request{
		UserID:        id.UserID,
		TrainNo:       trainNo,
		Berth:         berth,
		MealsRequired: meals,
		DepartureDate: departure,
	})
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Reservation successful!")
		a.printTicket(ctx, id.UserID, trainNo, departure)
	case errors.Is(err, booking.ErrNoSeatsAvailable):
		fmt.Fprintln(a.out, "No seats available on this train!")
	case errors.Is(err, booking.ErrTrainNotFound):
		fmt.Fprintln(a.out, "Train not found!")
	default:
		fmt.Fprintf(a.out, "Reservation failed: %v\n", err)
	}
}

func (a *App) viewReservations(ctx context.Context, id *auth.Identity) {
	views, err := a.engine.ListForUser(ctx, id.UserID)
	if err != nil {
		fmt.Fprintf(a.out, "Failed to fetch reservations: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "\n=== YOUR RESERVATIONS ===")
	if len(views) == 0 {
		fmt.Fprintln(a.out, "No reservations found.")
		return
	}
	border := "+-----+---------------------+-----------+-------+----------------+---------------------+"
	fmt.Fprintln(a.out, border)
	fmt.Fprintln(a.out, "| ID  | Train Name          | Berth     | Meals | Departure Date | Booking Date        |")
	fmt.Fprintln(a.out, border)
	for _, v := range views {
		meals := "No"
		if v.MealsRequired {
			meals = "Yes"
		}
		fmt.Fprintf(a.out, "| %-3d | %-19s | %-9s | %-5s | %-14s | %-19s |\n",
			v.ReservationID, v.TrainName, v.BerthType, meals,
			v.DepartureDate.Format("2006-01-02"), v.BookingDate.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(a.out, border)
}

func (a *App) cancelReservation(ctx context.Context, id *auth.Identity) {
	a.viewReservations(ctx, id)
	reservationID := a.p.intInRange("Enter reservation ID to cancel (0 to cancel): ", 0, math.MaxInt32)
	if reservationID == 0 {
		return
	}
	_, err := a.engine.Cancel(ctx, id.UserID, uint(reservationID))
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Reservation cancelled successfully!")
	case errors.Is(err, booking.ErrReservationNotFound):
		fmt.Fprintln(a.out, "Reservation not found or doesn't belong to you!")
	default:
		fmt.Fprintf(a.out, "Cancellation failed: %v\n", err)
	}
}

func (a *App) profileMenu(ctx context.Context, id *auth.Identity) {
	fmt.Fprintln(a.out, "\n=== USER PROFILE ===")
	fmt.Fprintln(a.out, "1. View Profile")
	fmt.Fprintln(a.out, "2. Update Profile")
	fmt.Fprintln(a.out, "3. Change Password")
	fmt.Fprintln(a.out, "4. Back to Main Menu")

	switch a.p.intInRange("Enter your choice: ", 1, 4) {
	case 1:
		a.viewProfile(ctx, id)
	case 2:
		a.updateProfile(ctx, id)
	case 3:
		a.changePassword(ctx, id)
	case 4:
	}
}

func (a *App) viewProfile(ctx context.Context, id *auth.Identity) {
	user, err := a.auth.Profile(ctx, id.UserID)
	if err != nil {
		fmt.Fprintf(a.out, "Failed to fetch profile: %v\n", err)
		return
	}
	nationalID := ""
	if user.NationalID != nil {
		nationalID = *user.NationalID
	}
	fmt.Fprintln(a.out, "\n=== YOUR PROFILE ===")
	fmt.Fprintf(a.out, "User ID: %s\n", user.UserID)
	fmt.Fprintf(a.out, "Username: %s\n", user.Username)
	fmt.Fprintf(a.out, "Full Name: %s\n", user.FullName)
	fmt.Fprintf(a.out, "Age: %d\n", user.Age)
	fmt.Fprintf(a.out, "Phone: %s\n", user.Phone)
	fmt.Fprintf(a.out, "National ID: %s\n", nationalID)
	fmt.Fprintf(a.out, "Address: %s\n", user.Address)
	fmt.Fprintf(a.out, "Pincode: %s\n", user.Pincode)
}

func (a *App) updateProfile(ctx context.Context, id *auth.Identity) {
	fmt.Fprintln(a.out, "\n=== UPDATE PROFILE ===")
	fmt.Fprintln(a.out, "1. Full Name")
	fmt.Fprintln(a.out, "2. Phone")
	fmt.Fprintln(a.out, "3. Address")
	fmt.Fprintln(a.out, "4. Pincode")

	choice := a.p.intInRange("Which field to update (1-4, 0 to cancel)? ", 0, 4)
	if choice == 0 {
		return
	}
	var field auth.ProfileField
	var value string
	switch choice {
	case 1:
		field = auth.FieldFullName
		value = a.p.valid("New full name: ", namePattern.MatchString, "Invalid name format")
	case 2:
		field = auth.FieldPhone
		value = a.p.valid("New phone number (10 digits): ", phonePattern.MatchString, "Invalid phone number")
	case 3:
		field = auth.FieldAddress
		value = a.p.valid("New address: ", notEmpty, "Address cannot be empty")
	case 4:
		field = auth.FieldPincode
		value = a.p.valid("New pincode (6 digits): ", pincodePattern.MatchString, "Invalid pincode")
	}
	if err := a.auth.UpdateProfileField(ctx, id.UserID, field, value); err != nil {
		fmt.Fprintf(a.out, "Failed to update profile: %v\n", err)
		return
	}
	if field == auth.FieldFullName {
		id.FullName = value
	}
	fmt.Fprintln(a.out, "Profile updated successfully!")
}

func (a *App) changePassword(ctx context.Context, id *auth.Identity) {
	current := a.p.line("Current password: ")
	next := a.p.valid("New password (min 8 chars): ", func(s string) bool { return len(s) >= 8 }, "Password too short")

	err := a.auth.ChangePassword(ctx, id.UserID, current, next)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Password changed successfully!")
	case errors.Is(err, auth.ErrInvalidCredentials):
		fmt.Fprintln(a.out, "Current password is incorrect!")
	default:
		fmt.Fprintf(a.out, "Failed to change password: %v\n", err)
	}
}

// printTicket renders the freshly committed reservation as a boxed ticket
func (a *App) printTicket(ctx context.Context, userID string, trainNo int, departure time.Time) {
	ticket, err := a.engine.RenderTicket(ctx, userID, trainNo, departure)
	if err != nil {
		fmt.Fprintf(a.out, "Failed to render ticket: %v\n", err)
		return
	}
	meals := "No"
	if ticket.MealsRequired {
		meals = "Yes"
	}
	fmt.Fprintln(a.out, "\n=== YOUR TICKET ===")
	fmt.Fprintln(a.out, "+---------------------+---------------------+")
	fmt.Fprintf(a.out, "| Passenger Name      | %-19s |\n", ticket.PassengerName)
	fmt.Fprintf(a.out, "| Train Name          | %-19s |\n", ticket.TrainName)
	fmt.Fprintf(a.out, "| Berth Type          | %-19s |\n", ticket.BerthType)
	fmt.Fprintf(a.out, "| Meals Included      | %-19s |\n", meals)
	fmt.Fprintf(a.out, "| Departure Date      | %-19s |\n", ticket.DepartureDate.Format("2006-01-02"))
	fmt.Fprintln(a.out, "+---------------------+---------------------+")
	fmt.Fprintln(a.out, "Note: Please carry valid ID proof during journey")
}
