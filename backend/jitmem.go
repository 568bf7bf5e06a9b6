package backend

import "golang.org/x/sys/unix"

// allocLayout packs blobs back to back with no padding beyond what mmap's
// page granularity already imposes, returning the total size and each
// blob's offset.
func allocLayout(blobs [][]byte) (size int, offsets []int) {
	offsets = make([]int, len(blobs))
	for i, b := range blobs {
		offsets[i] = size
		size += len(b)
	}
	if size == 0 {
		size = 1
	}
	return size, offsets
}

func allocExecutable(blobs [][]byte) ([]byte, []int, error) {
	return allocWithProt(blobs, unix.PROT_READ|unix.PROT_EXEC)
}

func allocReadOnly(blobs [][]byte) ([]byte, []int, error) {
	return allocWithProt(blobs, unix.PROT_READ)
}

// allocWithProt maps an anonymous, writable region, copies blobs into it,
// then drops it to finalProt. Code pages go write -> read+exec rather
// than ever being read+write+exec simultaneously.
func allocWithProt(blobs [][]byte, finalProt int) ([]byte, []int, error) {
	size, offsets := allocLayout(blobs)
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, err
	}
	for i, b := range blobs {
		copy(region[offsets[i]:], b)
	}
	if err := unix.Mprotect(region, finalProt); err != nil {
		unix.Munmap(region)
		return nil, nil, err
	}
	return region, offsets, nil
}
