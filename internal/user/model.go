package user

// User is the signed-in storefront account, as stored in the record
// store's users collection.
type User struct {
	ID          string
	Email       string
	Name        string
	Username    string
	Avatar      string
	Points      int
	MemberLevel int
	Verified    bool
}
