package timetable

// MappedRegions reports how many memory regions f currently holds.
func MappedRegions(f *File) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.mappings)
}
