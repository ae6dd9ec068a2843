package httpapi

type contextKey int

//AdminKey is the context key for the authenticated admin username for a request
const AdminKey contextKey = 0
