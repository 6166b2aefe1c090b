package strings

func AnyOf(testString string, variants ...string) bool {
	for _, s := range variants {
		if testString == s {
			return true
		}
	}
	return false
}

func ListToRefList(list []string) []*string {
	refList := make([]*string, 0, len(list))
	for i := range list {
		refList = append(refList, &list[i])
	}
	return refList
}

func RefListToList(refList []*string) []string {
	list := make([]string, 0, len(refList))
	for _, ref := range refList {
		if ref != nil {
			list = append(list, *ref)
		}
	}
	return list
}
