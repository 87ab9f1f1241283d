package config

const (
	// DefaultDatabasePath is the default path for the SQLite library database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultCoversDir is where downloaded cover images are kept
	DefaultCoversDir = "./covers"

	DefaultISBNdbBaseURL      = "https://api2.isbndb.com"
	DefaultGoogleBooksBaseURL = "https://www.googleapis.com/books/v1"
)
