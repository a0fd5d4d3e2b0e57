package booking

import "github.com/rentloop/rentloop/internal/vehicle"

// SeedVehicle registers a vehicle in the in-memory settlement store.
func SeedVehicle(s Store, vehicleID, ownerID string, dailyRate int64) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.vehicles[vehicleID] = &memVehicle{ownerID: ownerID, dailyRate: dailyRate, status: vehicle.StatusAvailable}
	}
}

// SeedWallet sets a user's wallet balance in the in-memory settlement store.
func SeedWallet(s Store, userID string, balance int64) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.wallets[userID] = balance
	}
}

// WalletBalance reads a balance back out of the in-memory settlement store.
func WalletBalance(s Store, userID string) int64 {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		return mem.wallets[userID]
	}
	return 0
}

// VehicleStatus reads a vehicle's lifecycle state out of the in-memory store.
func VehicleStatus(s Store, vehicleID string) string {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if v, ok := mem.vehicles[vehicleID]; ok {
			return v.status
		}
	}
	return ""
}

// FailNextUnit makes the next Purchase or Return abort after its checks and
// transfers have been staged, simulating a persistence failure mid-unit.
func FailNextUnit(s Store) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.failNextUnit = true
	}
}
